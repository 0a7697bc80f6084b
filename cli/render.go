package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/timewext/timew-reports/output"
)

// tableWidth is the rendered width of a table: column widths plus the single
// space separators.
func tableWidth(widths []int) int {
	total := len(widths) - 1
	for _, width := range widths {
		total += width
	}
	return total
}

// printRightAlignedTotal writes the closing total block of a table: an
// underlined blank overline sized to the total, then the total itself, both
// right-aligned to the table width.
func printRightAlignedTotal(w io.Writer, styles *output.Styles, widths []int, total string) {
	width := tableWidth(widths)
	underline := styles.Underline()

	padding := width - len(total)
	if padding < 0 {
		padding = 0
	}
	_, _ = fmt.Fprintln(w, strings.Repeat(" ", padding)+underline.Apply(strings.Repeat(" ", len(total))))
	_, _ = fmt.Fprintf(w, "%*s\n", width, total)
}
