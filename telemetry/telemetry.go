// Package telemetry collects hierarchical timings of the work done during a
// run, such as loading the ledger, fetching statements and writing entries.
//
// Collectors travel through the context, so instrumented code does not need
// to know whether timing is enabled:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("import")
//	fetch := timer.Child("fetch Assets:Bank:Fio")
//	// ... work ...
//	fetch.End()
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/beanclerk/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector receives timings.
type Collector interface {
	// Start begins timing an operation. Operations started while another
	// one is running are nested under it.
	Start(name string) Timer

	// Report writes the collected timings to w. Styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector carried by ctx, or one that discards
// everything when there is none.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
