package metrics

import (
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("eraser.metrics")

const ScrapeTimeout = 10 * time.Second
