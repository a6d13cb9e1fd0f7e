package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"doitnow/internal/adapter/database"
	"doitnow/internal/adapter/database/postgres"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/port"
)

const todosTable = "todos"

var todoColumns = []string{
	"id", "entity_id", "title", "description", "completed", "priority",
	"due_date", "assigned_to", "user_id", "created_at", "updated_at",
}

type TodoRepository struct {
	db    *postgres.DB
	clock database.Clock
}

func NewTodoRepository(db *postgres.DB) port.TodoRepository {
	return &TodoRepository{db: db, clock: database.SystemClock}
}

func (tr *TodoRepository) FindAll(ctx context.Context) ([]domain.Todo, error) {
	return tr.list(ctx, "FindAll", tr.selectTodos().OrderBy("id ASC"))
}

func (tr *TodoRepository) FindByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return tr.list(ctx, "FindByCompleted", tr.selectTodos().
		Where(sq.Eq{"completed": completed}).
		OrderBy("id ASC"))
}

func (tr *TodoRepository) FindByCompletedOrderByDueDate(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return tr.list(ctx, "FindByCompletedOrderByDueDate", tr.selectTodos().
		Where(sq.Eq{"completed": completed}).
		OrderBy("due_date ASC NULLS LAST", "id ASC"))
}

func (tr *TodoRepository) FindByPriority(ctx context.Context, priority string) ([]domain.Todo, error) {
	return tr.list(ctx, "FindByPriority", tr.selectTodos().
		Where(sq.Eq{"priority": priority}).
		OrderBy("id ASC"))
}

func (tr *TodoRepository) FindByDueDateBetween(ctx context.Context, start, end time.Time) ([]domain.Todo, error) {
	return tr.list(ctx, "FindByDueDateBetween", tr.selectTodos().
		Where(sq.GtOrEq{"due_date": database.NormalizeUp(start)}).
		Where(sq.LtOrEq{"due_date": database.Normalize(end)}).
		OrderBy("due_date ASC", "id ASC"))
}

func (tr *TodoRepository) FindByEntityID(ctx context.Context, entityID int64) (domain.Todo, error) {
	var todo domain.Todo

	err := tr.db.Span(ctx, todosTable, "FindByEntityID", func(ctx context.Context) error {
		query, args, err := tr.selectTodos().
			Where(sq.Eq{"entity_id": entityID}).
			Limit(1).
			ToSql()
		if err != nil {
			return err
		}

		todo, err = scanTodo(tr.db.Executor(ctx).QueryRow(ctx, query, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	})

	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return domain.Todo{}, fmt.Errorf("find todo by entity id %d: %w", entityID, err)
	}

	return todo, err
}

func (tr *TodoRepository) Save(ctx context.Context, todo *domain.Todo) error {
	if todo.IsPersisted() {
		return tr.db.Span(ctx, todosTable, "Update", func(ctx context.Context) error {
			return tr.update(ctx, todo)
		})
	}

	return tr.db.Span(ctx, todosTable, "Insert", func(ctx context.Context) error {
		return tr.insert(ctx, todo)
	})
}

func (tr *TodoRepository) insert(ctx context.Context, todo *domain.Todo) error {
	now := database.Normalize(tr.clock())

	query, args, err := tr.db.QueryBuilder.Insert(todosTable).
		Columns(todoColumns[1:]...).
		Values(
			todo.EntityID,
			todo.Title,
			todo.Description,
			todo.Completed,
			todo.Priority.String(),
			todo.DueDate,
			todo.AssignedTo,
			todo.UserID,
			now,
			now,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	var id int64
	if err := tr.db.Executor(ctx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return fmt.Errorf("insert todo %d: %w", todo.EntityID, err)
	}

	todo.ID = id
	todo.CreatedAt = now
	todo.UpdatedAt = now

	return nil
}

func (tr *TodoRepository) update(ctx context.Context, todo *domain.Todo) error {
	updatedAt := database.NextUpdate(todo.UpdatedAt, tr.clock())

	query, args, err := tr.db.QueryBuilder.Update(todosTable).
		SetMap(map[string]any{
			"title":       todo.Title,
			"description": todo.Description,
			"completed":   todo.Completed,
			"priority":    todo.Priority.String(),
			"due_date":    todo.DueDate,
			"assigned_to": todo.AssignedTo,
			"user_id":     todo.UserID,
			"updated_at":  updatedAt,
		}).
		Where(sq.Eq{"id": todo.ID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := tr.db.Executor(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", todo.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	todo.UpdatedAt = updatedAt

	return nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	return tr.db.Span(ctx, todosTable, "DeleteByID", func(ctx context.Context) error {
		query, args, err := tr.db.QueryBuilder.Delete(todosTable).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}

		tag, err := tr.db.Executor(ctx).Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete todo %d: %w", id, err)
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrRecordNotFound
		}

		return nil
	})
}

func (tr *TodoRepository) selectTodos() sq.SelectBuilder {
	return tr.db.QueryBuilder.Select(todoColumns...).From(todosTable)
}

func (tr *TodoRepository) list(ctx context.Context, operation string, builder sq.SelectBuilder) ([]domain.Todo, error) {
	todos := []domain.Todo{}

	err := tr.db.Span(ctx, todosTable, operation, func(ctx context.Context) error {
		query, args, err := builder.ToSql()
		if err != nil {
			return err
		}

		rows, err := tr.db.Executor(ctx).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			todo, err := scanTodo(rows)
			if err != nil {
				return err
			}

			todos = append(todos, todo)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var (
		todo     domain.Todo
		priority string
	)

	err := row.Scan(
		&todo.ID,
		&todo.EntityID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&priority,
		&todo.DueDate,
		&todo.AssignedTo,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return domain.Todo{}, err
	}

	todo.Priority = domain.Priority(priority)
	todo.CreatedAt = todo.CreatedAt.UTC()
	todo.UpdatedAt = todo.UpdatedAt.UTC()

	if todo.DueDate != nil {
		due := todo.DueDate.UTC()
		todo.DueDate = &due
	}

	return todo, nil
}
