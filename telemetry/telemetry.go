// Package telemetry provides lightweight phase timing for the report
// pipeline. Collectors travel through context so instrumentation does not
// change function signatures, and the default is a no-op.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("parse export")
//	// ... work ...
//	timer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector records named phase timings.
type Collector interface {
	// Start begins timing a phase. The returned timer must be ended when
	// the phase completes.
	Start(name string) Timer

	// Report writes the collected timings to the writer.
	Report(w io.Writer)
}

// Timer tracks a single phase.
type Timer interface {
	End()
}

// WithCollector attaches a collector to the context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from the context, falling back to a
// collector that does nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer { return noOpTimer{} }
func (noOpCollector) Report(w io.Writer)      {}

type noOpTimer struct{}

func (noOpTimer) End() {}
