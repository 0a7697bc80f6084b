package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/timewext/timew-reports/csvio"
	"github.com/timewext/timew-reports/timew"
)

// CsvCmd dumps the raw intervals as CSV without any project mapping.
type CsvCmd struct{}

func (cmd *CsvCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := withTelemetry(globals, ctx.Stderr)
	defer reportTelemetry()

	_, entries, err := readInput(runCtx, os.Stdin)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	_, _ = fmt.Fprintln(w, csvio.RowQuotesOnly([]string{"Start", "End", "Annotation", "Tags"}))

	for _, entry := range entries {
		end := ""
		if entry.Ended() {
			end = entry.End.Format(timew.TimestampFormat)
		}
		row := []string{
			entry.Start.Format(timew.TimestampFormat),
			end,
			entry.Annotation,
			strings.Join(entry.Tags, " "),
		}
		_, _ = fmt.Fprintln(w, csvio.RowQuotesOnly(row))
	}

	return nil
}
