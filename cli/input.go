package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/timewext/timew-reports/telemetry"
	"github.com/timewext/timew-reports/timew"
)

// withTelemetry attaches a timing collector to a fresh context when the
// telemetry flag is set. The returned report function writes the collected
// timings and is a no-op otherwise.
func withTelemetry(globals *Globals, stderr io.Writer) (context.Context, func()) {
	ctx := context.Background()
	if !globals.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	return ctx, func() {
		_, _ = fmt.Fprintln(stderr)
		collector.Report(stderr)
	}
}

// readInput consumes a report stream: the header block followed by the JSON
// interval export.
func readInput(ctx context.Context, r io.Reader) (timew.Header, []timew.Interval, error) {
	timer := telemetry.FromContext(ctx).Start("parse input")
	defer timer.End()

	header, payload, err := timew.SplitInput(r)
	if err != nil {
		return nil, nil, err
	}

	entries, err := timew.ParseExport(payload)
	if err != nil {
		return nil, nil, err
	}

	return header, entries, nil
}
