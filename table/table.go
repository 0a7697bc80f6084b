// Package table renders aligned, optionally striped ANSI tables sized to the
// terminal. Columns can wrap and be elastic: when the natural widths exceed
// the terminal, elastic columns shrink toward their minimum widths, and when
// room is left over they grow to fill it.
package table

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/timewext/timew-reports/output"
)

// Alignment of a column's cells.
const (
	AlignLeft  = "<"
	AlignRight = ">"
)

// ColumnSpec describes one column of the table.
type ColumnSpec struct {
	Align   string
	Wrap    bool
	Elastic bool

	// MinWidth is a lower bound on the column width. Zero means no bound.
	MinWidth int

	// WrapFunc overrides the word-based wrapping for this column.
	WrapFunc func(value string, width int) []string
}

// RowStyler returns a style for a rendered line of a row, or an empty style.
type RowStyler func(rowIndex int, row []string, lineIndex int) output.Style

// CellStyler returns a style for a single cell line, or an empty style.
type CellStyler func(rowIndex, colIndex int, line string, row []string, lineIndex int) output.Style

// TerminalWidth returns the column count of the attached terminal, or zero
// when no terminal is available. Report output is often piped back into the
// invoking process while stderr stays on the terminal, so stderr is probed
// as a fallback.
func TerminalWidth() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		fd := int(f.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		if columns, _, err := term.GetSize(fd); err == nil && columns > 0 {
			return columns
		}
	}
	return 0
}

// AllocateWidths fits the widths into the total width. Extra room is handed
// to the elastic columns round-robin; overflow shrinks them in shrink order
// down to their minimums, then any remaining room is re-distributed. A total
// width of zero leaves the widths unchanged.
func AllocateWidths(widths []int, elastic []int, totalWidth int, minWidths []int, shrinkOrder []int) []int {
	adjusted := make([]int, len(widths))
	copy(adjusted, widths)
	if totalWidth == 0 || len(elastic) == 0 {
		return adjusted
	}

	if minWidths == nil {
		minWidths = make([]int, len(adjusted))
		for i := range minWidths {
			minWidths[i] = 1
		}
	}

	separators := len(adjusted) - 1
	current := sum(adjusted) + separators
	if current == totalWidth {
		return adjusted
	}

	if current < totalWidth {
		expand(adjusted, elastic, totalWidth-current)
		return adjusted
	}

	overflow := current - totalWidth
	capacities := make(map[int]int, len(elastic))
	for _, i := range elastic {
		capacities[i] = max(0, adjusted[i]-minWidths[i])
	}
	if shrinkOrder == nil {
		shrinkOrder = elastic
	}

	for overflow > 0 && anyPositive(capacities) {
		for _, i := range shrinkOrder {
			if overflow <= 0 {
				break
			}
			if capacities[i] <= 0 {
				continue
			}
			adjusted[i]--
			capacities[i]--
			overflow--
		}
	}

	current = sum(adjusted) + separators
	if current < totalWidth {
		expand(adjusted, elastic, totalWidth-current)
	}
	return adjusted
}

func expand(widths []int, elastic []int, extra int) {
	for index := 0; extra > 0; index++ {
		widths[elastic[index%len(elastic)]]++
		extra--
	}
}

// WrapText word-wraps the value to the width. Values without spaces, or
// already within the width, come back as a single line.
func WrapText(value string, width int) []string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return []string{value}
	}
	words := strings.Fields(value)
	if len(words) == 0 {
		return []string{value}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// ComputeWidths measures the natural column widths of the rows and headers
// and fits them to the terminal when needed. The second return value reports
// whether the widths were constrained by the terminal. Minimum widths under
// constraint keep wrapped columns at least as wide as their longest word.
func ComputeWidths(rows [][]string, headers []string, columns []ColumnSpec, terminalColumns int, shrinkOrder []int) ([]int, bool) {
	if len(headers) != len(columns) {
		panic(fmt.Sprintf("table: %d headers for %d columns", len(headers), len(columns)))
	}

	widths := make([]int, len(headers))
	maxWordWidths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
		maxWordWidths[i] = widths[i]
	}

	for _, row := range rows {
		for i, cell := range row {
			for _, segment := range strings.Split(cell, "\n") {
				if w := runewidth.StringWidth(segment); w > widths[i] {
					widths[i] = w
				}
				if columns[i].Wrap && segment != "" {
					for _, word := range strings.Fields(segment) {
						if w := runewidth.StringWidth(word); w > maxWordWidths[i] {
							maxWordWidths[i] = w
						}
					}
				}
			}
		}
	}

	for i, column := range columns {
		if column.MinWidth > 0 && widths[i] < column.MinWidth {
			widths[i] = column.MinWidth
		}
	}

	total := sum(widths) + len(widths) - 1
	if terminalColumns == 0 || total <= terminalColumns {
		return widths, false
	}

	minWidths := make([]int, len(widths))
	for i, column := range columns {
		base := runewidth.StringWidth(headers[i])
		if column.MinWidth > base {
			base = column.MinWidth
		}
		if column.Wrap && maxWordWidths[i] > base {
			base = maxWordWidths[i]
		}
		minWidths[i] = base
	}

	var elastic []int
	for i, column := range columns {
		if column.Elastic {
			elastic = append(elastic, i)
		}
	}
	if len(elastic) == 0 {
		return widths, false
	}

	if shrinkOrder != nil {
		var filtered []int
		for _, i := range shrinkOrder {
			if columns[i].Elastic {
				filtered = append(filtered, i)
			}
		}
		shrinkOrder = filtered
	}

	return AllocateWidths(widths, elastic, terminalColumns, minWidths, shrinkOrder), true
}

// RenderOptions control striping and styling of the body rows.
type RenderOptions struct {
	Stripe     bool
	RowStyle   RowStyler
	CellStyle  CellStyler
	StartIndex int
}

// Renderer writes table lines to a writer using a style set.
type Renderer struct {
	w      io.Writer
	styles *output.Styles
}

// NewRenderer creates a renderer for the writer, detecting its color profile.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, styles: output.NewStyles(w)}
}

// Styles exposes the renderer's style set for callers that build their own
// row and cell stylers.
func (r *Renderer) Styles() *output.Styles {
	return r.styles
}

// RenderHeader writes the underlined header row.
func (r *Renderer) RenderHeader(headers []string, widths []int, columns []ColumnSpec) {
	underline := r.styles.Underline()
	parts := make([]string, len(headers))
	for i, header := range headers {
		parts[i] = underline.Apply(pad(header, widths[i], columns[i].Align))
	}
	fmt.Fprintln(r.w, strings.Join(parts, " "))
}

// RenderRows writes the body rows. Cells containing newlines, and wrapped
// cells exceeding their width, expand the row to multiple lines; the other
// cells pad with blanks. Odd rows get the stripe background when enabled.
func (r *Renderer) RenderRows(rows [][]string, widths []int, columns []ColumnSpec, opts RenderOptions) {
	if len(widths) != len(columns) {
		panic(fmt.Sprintf("table: %d widths for %d columns", len(widths), len(columns)))
	}

	stripe := r.styles.Stripe()
	reset := r.styles.Reset()

	for rowOffset, row := range rows {
		rowIndex := opts.StartIndex + rowOffset

		cells := make([][]string, len(row))
		maxLines := 1
		for i, cell := range row {
			var lines []string
			for _, segment := range strings.Split(cell, "\n") {
				if columns[i].Wrap {
					wrapFunc := columns[i].WrapFunc
					if wrapFunc == nil {
						wrapFunc = WrapText
					}
					wrapped := wrapFunc(segment, widths[i])
					if len(wrapped) == 0 {
						wrapped = []string{""}
					}
					lines = append(lines, wrapped...)
				} else {
					lines = append(lines, segment)
				}
			}
			if len(lines) == 0 {
				lines = []string{""}
			}
			cells[i] = lines
			if len(lines) > maxLines {
				maxLines = len(lines)
			}
		}

		for lineIndex := 0; lineIndex < maxLines; lineIndex++ {
			formatted := make([]string, len(cells))
			for colIndex, lines := range cells {
				var value string
				if lineIndex < len(lines) {
					value = lines[lineIndex]
				}
				cell := pad(value, widths[colIndex], columns[colIndex].Align)
				if opts.CellStyle != nil {
					if style := opts.CellStyle(rowIndex, colIndex, value, row, lineIndex); !style.Empty() {
						cell = style.Apply(cell)
					}
				}
				formatted[colIndex] = cell
			}

			line := strings.Join(formatted, " ")
			var prefix, suffix string
			if opts.Stripe && rowIndex%2 == 1 {
				prefix += stripe.Prefix
			}
			if opts.RowStyle != nil {
				if style := opts.RowStyle(rowIndex, row, lineIndex); !style.Empty() {
					prefix += style.Prefix
					suffix = style.Suffix
				}
			}
			if prefix != "" || suffix != "" {
				fmt.Fprintln(r.w, prefix+line+suffix+reset)
			} else {
				fmt.Fprintln(r.w, line)
			}
		}
	}
}

// RenderTable computes widths for the rows, renders the header and the body,
// and returns the widths used.
func (r *Renderer) RenderTable(headers []string, rows [][]string, columns []ColumnSpec, shrinkOrder []int, opts RenderOptions) []int {
	widths, _ := ComputeWidths(rows, headers, columns, TerminalWidth(), shrinkOrder)
	r.RenderHeader(headers, widths, columns)
	r.RenderRows(rows, widths, columns, opts)
	return widths
}

func pad(value string, width int, align string) string {
	if align == AlignRight {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

func sum(values []int) int {
	total := 0
	for _, value := range values {
		total += value
	}
	return total
}

func anyPositive(values map[int]int) bool {
	for _, value := range values {
		if value > 0 {
			return true
		}
	}
	return false
}
