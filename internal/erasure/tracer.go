package erasure

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("eraser.erasure")
