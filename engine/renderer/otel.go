package renderer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Carmen-Shannon/smoothie/engine/renderer"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// ctx returns the context metric recordings are made under. The render loop has no
// request context of its own.
func ctx() context.Context {
	return context.Background()
}
