package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanclerk/output"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background()).(noOpCollector)
	assert.True(t, ok)

	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	assert.Equal(t, Collector(collector), FromContext(ctx))
}

func TestNoOpCollector(t *testing.T) {
	collector := FromContext(context.Background())
	timer := collector.Start("import")
	timer.Child("fetch").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestTimingCollectorReport(t *testing.T) {
	collector := NewTimingCollector()
	collector.now = fakeClock(10 * time.Millisecond)

	root := collector.Start("import")
	load := collector.Start("load ledger.beancount")
	collector.Start("parse ledger.beancount").End()
	load.End()
	fetch := root.Child("fetch Assets:Bank:Fio")
	fetch.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	assert.Equal(t, strings.Join([]string{
		"import: 70ms",
		"├─ load ledger.beancount: 30ms",
		"│  └─ parse ledger.beancount: 10ms",
		"└─ fetch Assets:Bank:Fio: 10ms",
		"",
	}, "\n"), buf.String())
}

func TestTimingCollectorReportWithStyles(t *testing.T) {
	collector := NewTimingCollector()
	collector.now = fakeClock(time.Second)

	root := collector.Start("import")
	root.Child("fetch").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, output.NewPlainStyles(&buf))
	assert.Equal(t, "import: 3.00s\n└─ fetch: 1.00s\n", buf.String())
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{time.Millisecond, "1ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}
