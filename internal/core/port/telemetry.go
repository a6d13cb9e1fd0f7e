package port

import "context"

// OperationRecorder counts business operations. Implemented by
// telemetry.AppMetrics; telemetry.NoOpRecorder is used when metrics are off.
type OperationRecorder interface {
	RecordTodoOperation(ctx context.Context, operation string)
	RecordUserOperation(ctx context.Context, operation string)
}
