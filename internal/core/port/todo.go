package port

import (
	"context"
	"time"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/request"
)

// TodoRepository is the Todo store. Lookups that match nothing return
// domain.ErrRecordNotFound. Save inserts when ID is zero and updates
// otherwise; it assigns ID and stamps CreatedAt/UpdatedAt on the argument.
type TodoRepository interface {
	FindAll(ctx context.Context) ([]domain.Todo, error)
	FindByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error)
	FindByCompletedOrderByDueDate(ctx context.Context, completed bool) ([]domain.Todo, error)
	FindByPriority(ctx context.Context, priority string) ([]domain.Todo, error)
	FindByDueDateBetween(ctx context.Context, start, end time.Time) ([]domain.Todo, error)
	FindByEntityID(ctx context.Context, entityID int64) (domain.Todo, error)
	Save(ctx context.Context, todo *domain.Todo) error
	DeleteByID(ctx context.Context, id int64) error
}

type TodoService interface {
	ListAll(ctx context.Context) ([]domain.Todo, error)
	ListByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error)
	ListByCompletedOrderByDueDate(ctx context.Context, completed bool) ([]domain.Todo, error)
	ListByPriority(ctx context.Context, priority string) ([]domain.Todo, error)
	ListByDueDateRange(ctx context.Context, start, end time.Time) ([]domain.Todo, error)
	GetByKey(ctx context.Context, key int64) (domain.Todo, error)
	Create(ctx context.Context, req request.TodoRequest) (domain.Todo, error)
	Update(ctx context.Context, key int64, req request.TodoRequest) (domain.Todo, error)
	ToggleCompleted(ctx context.Context, key int64) (domain.Todo, error)
	Delete(ctx context.Context, key int64) error
}
