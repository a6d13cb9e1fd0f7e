package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/port"
	"doitnow/pkg/logger"
	"doitnow/pkg/tracing"
)

// execute traces one service operation and runs it inside a single store
// transaction. Errors that are not part of the domain taxonomy are logged.
func execute(ctx context.Context, tx port.Transactor, log *logger.Logger, service, operation string, fn func(context.Context) error) error {
	err := tracing.ServiceSpanWrapper(ctx, service, operation, func(ctx context.Context) error {
		return tx.WithinTransaction(ctx, fn)
	})

	if err != nil && !isDomainError(err) {
		log.ErrorWithTrace(ctx, "service operation failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Error(err))
	}

	return err
}

func isDomainError(err error) bool {
	var validation *domain.ValidationError

	return domain.IsNotFound(err) || domain.IsConflict(err) || errors.As(err, &validation)
}
