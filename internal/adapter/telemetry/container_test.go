package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewContainer_WithoutExporter(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, Config{
		ServiceName:    "doitnow",
		ServiceVersion: "test",
		Environment:    "test",
		MetricsPort:    "0",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, container.AppMetrics)
	assert.NotNil(t, container.TracerProvider)

	container.AppMetrics.RecordTodoOperation(ctx, "create")

	families, err := container.PrometheusRegistry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}

	assert.Contains(t, names, "todo_operations_total")
	assert.Contains(t, names, "go_goroutines")

	assert.NoError(t, container.Shutdown(ctx))
}
