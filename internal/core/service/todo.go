package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/mapper"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/port"
	"doitnow/internal/core/telemetry"
	"doitnow/pkg/logger"
)

const todoService = "todo"

type TodoService struct {
	todos   port.TodoRepository
	users   port.UserRepository
	tx      port.Transactor
	metrics port.OperationRecorder
	logger  *logger.Logger
}

func NewTodoService(todos port.TodoRepository, users port.UserRepository, tx port.Transactor, metrics port.OperationRecorder, log *logger.Logger) *TodoService {
	if metrics == nil {
		metrics = telemetry.NewNoOpRecorder()
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &TodoService{
		todos:   todos,
		users:   users,
		tx:      tx,
		metrics: metrics,
		logger:  log,
	}
}

func (ts *TodoService) ListAll(ctx context.Context) ([]domain.Todo, error) {
	return ts.list(ctx, "ListAll", ts.todos.FindAll)
}

func (ts *TodoService) ListByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return ts.list(ctx, "ListByCompleted", func(ctx context.Context) ([]domain.Todo, error) {
		return ts.todos.FindByCompleted(ctx, completed)
	})
}

func (ts *TodoService) ListByCompletedOrderByDueDate(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return ts.list(ctx, "ListByCompletedOrderByDueDate", func(ctx context.Context) ([]domain.Todo, error) {
		return ts.todos.FindByCompletedOrderByDueDate(ctx, completed)
	})
}

// ListByPriority passes the value through; an unknown priority matches nothing.
func (ts *TodoService) ListByPriority(ctx context.Context, priority string) ([]domain.Todo, error) {
	return ts.list(ctx, "ListByPriority", func(ctx context.Context) ([]domain.Todo, error) {
		return ts.todos.FindByPriority(ctx, priority)
	})
}

// ListByDueDateRange is inclusive on both ends. A range with start after end
// is empty.
func (ts *TodoService) ListByDueDateRange(ctx context.Context, start, end time.Time) ([]domain.Todo, error) {
	if start.After(end) {
		return []domain.Todo{}, nil
	}

	return ts.list(ctx, "ListByDueDateRange", func(ctx context.Context) ([]domain.Todo, error) {
		return ts.todos.FindByDueDateBetween(ctx, start, end)
	})
}

func (ts *TodoService) GetByKey(ctx context.Context, key int64) (domain.Todo, error) {
	var todo domain.Todo

	err := execute(ctx, ts.tx, ts.logger, todoService, "GetByKey", func(ctx context.Context) error {
		var err error
		todo, err = ts.findByKey(ctx, key, key)
		return err
	})
	if err != nil {
		return domain.Todo{}, err
	}

	ts.metrics.RecordTodoOperation(ctx, "get")

	return todo, nil
}

// Create relies on the store's unique constraint for entityId; a duplicate
// surfaces as an internal error.
func (ts *TodoService) Create(ctx context.Context, req request.TodoRequest) (domain.Todo, error) {
	todo := mapper.ToTodoEntity(req)

	if todo.Priority == "" {
		todo.Priority = domain.DefaultPriority
	}

	err := execute(ctx, ts.tx, ts.logger, todoService, "Create", func(ctx context.Context) error {
		if err := ts.ensureUser(ctx, todo.UserID); err != nil {
			return err
		}

		if err := ts.todos.Save(ctx, &todo); err != nil {
			return fmt.Errorf("create todo: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Todo{}, err
	}

	ts.metrics.RecordTodoOperation(ctx, "create")
	ts.logger.InfoWithTrace(ctx, "todo created",
		zap.Int64("todo_id", todo.ID),
		zap.Int64("entity_id", todo.EntityID))

	return todo, nil
}

// Update looks the todo up by the entityId carried in the body. The path key
// is only used in the not-found message.
func (ts *TodoService) Update(ctx context.Context, key int64, req request.TodoRequest) (domain.Todo, error) {
	lookup := key
	if req.EntityID != nil {
		lookup = *req.EntityID
	}

	var todo domain.Todo

	err := execute(ctx, ts.tx, ts.logger, todoService, "Update", func(ctx context.Context) error {
		var err error

		todo, err = ts.findByKey(ctx, lookup, key)
		if err != nil {
			return err
		}

		mapper.ApplyTodoUpdate(req, &todo)

		if err := ts.ensureUser(ctx, todo.UserID); err != nil {
			return err
		}

		if err := ts.todos.Save(ctx, &todo); err != nil {
			return fmt.Errorf("update todo %d: %w", todo.EntityID, err)
		}

		return nil
	})
	if err != nil {
		return domain.Todo{}, err
	}

	ts.metrics.RecordTodoOperation(ctx, "update")
	ts.logger.InfoWithTrace(ctx, "todo updated", zap.Int64("entity_id", todo.EntityID))

	return todo, nil
}

func (ts *TodoService) ToggleCompleted(ctx context.Context, key int64) (domain.Todo, error) {
	var todo domain.Todo

	err := execute(ctx, ts.tx, ts.logger, todoService, "ToggleCompleted", func(ctx context.Context) error {
		var err error

		todo, err = ts.findByKey(ctx, key, key)
		if err != nil {
			return err
		}

		todo.Toggle()

		if err := ts.todos.Save(ctx, &todo); err != nil {
			return fmt.Errorf("toggle todo %d: %w", key, err)
		}

		return nil
	})
	if err != nil {
		return domain.Todo{}, err
	}

	ts.metrics.RecordTodoOperation(ctx, "toggle")
	ts.logger.InfoWithTrace(ctx, "todo toggled",
		zap.Int64("entity_id", todo.EntityID),
		zap.Bool("completed", todo.Completed))

	return todo, nil
}

func (ts *TodoService) Delete(ctx context.Context, key int64) error {
	err := execute(ctx, ts.tx, ts.logger, todoService, "Delete", func(ctx context.Context) error {
		todo, err := ts.findByKey(ctx, key, key)
		if err != nil {
			return err
		}

		if err := ts.todos.DeleteByID(ctx, todo.ID); err != nil {
			return fmt.Errorf("delete todo %d: %w", key, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	ts.metrics.RecordTodoOperation(ctx, "delete")
	ts.logger.InfoWithTrace(ctx, "todo deleted", zap.Int64("entity_id", key))

	return nil
}

func (ts *TodoService) list(ctx context.Context, operation string, find func(context.Context) ([]domain.Todo, error)) ([]domain.Todo, error) {
	var todos []domain.Todo

	err := execute(ctx, ts.tx, ts.logger, todoService, operation, func(ctx context.Context) error {
		var err error
		todos, err = find(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	ts.metrics.RecordTodoOperation(ctx, "list")

	return todos, nil
}

// findByKey looks up entityID and reports a miss using reportedKey.
func (ts *TodoService) findByKey(ctx context.Context, entityID, reportedKey int64) (domain.Todo, error) {
	todo, err := ts.todos.FindByEntityID(ctx, entityID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.Todo{}, domain.TodoNotFound(reportedKey)
	}
	if err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func (ts *TodoService) ensureUser(ctx context.Context, userID *int64) error {
	if userID == nil {
		return nil
	}

	_, err := ts.users.FindByID(ctx, *userID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.UserNotFound(*userID)
	}

	return err
}
