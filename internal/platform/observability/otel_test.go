package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelDebug, parseLevel(" debug "))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}

func TestInMemoryInstrumentsCollectCounters(t *testing.T) {
	ctx := context.Background()
	instruments, recorder := NewInMemory(nil)

	counter, err := instruments.Meter("test").Int64Counter("manifests.items")
	require.NoError(t, err)
	counter.Add(ctx, 2, metric.WithAttributes(attribute.String("outcome", "success")))
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
	counter.Add(ctx, 3, metric.WithAttributes(attribute.String("outcome", "success")))

	_, span := instruments.Tracer("test").Start(ctx, "ManifestService.Process")
	span.End()

	rm, err := instruments.Collect(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, CounterValue(rm, "manifests.items", "outcome", "success"))
	assert.EqualValues(t, 1, CounterValue(rm, "manifests.items", "outcome", "error"))
	assert.Zero(t, CounterValue(rm, "manifests.runs", "outcome", "success"))

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "ManifestService.Process", recorder.Ended()[0].Name())
}

func TestCollectWithoutReader(t *testing.T) {
	_, err := (&Instruments{}).Collect(context.Background())
	assert.Error(t, err)
}
