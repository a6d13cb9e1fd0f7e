package telemetry

import (
	"context"

	"doitnow/internal/core/port"
)

type NoOpRecorder struct{}

func NewNoOpRecorder() port.OperationRecorder {
	return &NoOpRecorder{}
}

func (r *NoOpRecorder) RecordTodoOperation(ctx context.Context, operation string) {}

func (r *NoOpRecorder) RecordUserOperation(ctx context.Context, operation string) {}
