package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	otelcodes "go.opentelemetry.io/otel/codes"
)

var eraserPendingDesc = prometheus.NewDesc(
	"eraser_pending_erasures",
	"Number of erasures that started but did not finish",
	[]string{"phase"},
	nil,
)

// PendingCounter counts unfinished erasures by the phase they stopped in.
type PendingCounter interface {
	CountPending(ctx context.Context) (map[string]int, error)
}

type PendingCollector struct {
	counter PendingCounter
}

func NewPendingCollector(counter PendingCounter) *PendingCollector {
	return &PendingCollector{counter: counter}
}

func (c *PendingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- eraserPendingDesc
}

func (c *PendingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), ScrapeTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "PendingCollector.Collect")
	defer span.End()

	counts, err := c.counter.CountPending(ctx)
	if err != nil {
		span.SetStatus(otelcodes.Error, "Failed to count pending erasures")
		span.RecordError(err)

		ch <- prometheus.NewInvalidMetric(eraserPendingDesc, err)
		return
	}

	span.SetStatus(otelcodes.Ok, "Pending erasures collected successfully")

	for phase, count := range counts {
		ch <- prometheus.MustNewConstMetric(eraserPendingDesc, prometheus.GaugeValue, float64(count), phase)
	}
}

var _ prometheus.Collector = (*PendingCollector)(nil)
