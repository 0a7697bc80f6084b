package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/timewext/timew-reports/csvio"
	"github.com/timewext/timew-reports/telemetry"
	"github.com/timewext/timew-reports/zoho"
)

// ZohoCmd exports the intervals as a Zoho Projects time log CSV.
type ZohoCmd struct{}

func (cmd *ZohoCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := withTelemetry(globals, ctx.Stderr)
	defer reportTelemetry()

	_, intervals, err := readInput(runCtx, os.Stdin)
	if err != nil {
		return err
	}

	configs, err := zoho.LoadProjects()
	if err != nil {
		return err
	}

	buildTimer := telemetry.FromContext(runCtx).Start("build entries")
	var entries []zoho.Entry
	for _, interval := range intervals {
		entry, ok := zoho.BuildEntry(interval, zoho.Resolve(interval.Tags, configs))
		if !ok {
			continue
		}
		entries = zoho.MergeInto(entries, entry)
	}
	buildTimer.End()

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	header := []string{"Date", "Time Spent", "Project Name", "Task Name", "Billable Status", "Notes"}
	_, _ = fmt.Fprintln(w, csvio.Row(header))

	for _, entry := range entries {
		row := entry.Row()
		row[5] = zoho.SanitizeNotes(row[5])
		_, _ = fmt.Fprintln(w, csvio.Row(row))
	}

	return nil
}
