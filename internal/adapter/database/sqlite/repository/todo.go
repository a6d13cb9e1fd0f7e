package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"doitnow/internal/adapter/database"
	"doitnow/internal/adapter/database/sqlite"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/port"
)

var todoColumns = []string{
	"id", "entity_id", "title", "description", "completed", "priority",
	"due_date", "assigned_to", "user_id", "created_at", "updated_at",
}

type TodoRepository struct {
	db    *sqlite.DB
	clock database.Clock
}

func NewTodoRepository(db *sqlite.DB) port.TodoRepository {
	return &TodoRepository{db: db, clock: database.SystemClock}
}

func (tr *TodoRepository) FindAll(ctx context.Context) ([]domain.Todo, error) {
	return tr.list(ctx, tr.selectTodos().OrderBy("id ASC"))
}

func (tr *TodoRepository) FindByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return tr.list(ctx, tr.selectTodos().
		Where(sq.Eq{"completed": completed}).
		OrderBy("id ASC"))
}

// FindByCompletedOrderByDueDate puts todos without a due date last.
func (tr *TodoRepository) FindByCompletedOrderByDueDate(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return tr.list(ctx, tr.selectTodos().
		Where(sq.Eq{"completed": completed}).
		OrderBy("due_date IS NULL", "due_date ASC", "id ASC"))
}

func (tr *TodoRepository) FindByPriority(ctx context.Context, priority string) ([]domain.Todo, error) {
	return tr.list(ctx, tr.selectTodos().
		Where(sq.Eq{"priority": priority}).
		OrderBy("id ASC"))
}

func (tr *TodoRepository) FindByDueDateBetween(ctx context.Context, start, end time.Time) ([]domain.Todo, error) {
	return tr.list(ctx, tr.selectTodos().
		Where(sq.GtOrEq{"due_date": sqlite.FormatTime(database.NormalizeUp(start))}).
		Where(sq.LtOrEq{"due_date": sqlite.FormatTime(end)}).
		OrderBy("due_date ASC", "id ASC"))
}

func (tr *TodoRepository) FindByEntityID(ctx context.Context, entityID int64) (domain.Todo, error) {
	query, args, err := tr.selectTodos().
		Where(sq.Eq{"entity_id": entityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	todo, err := scanTodo(tr.db.Executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Todo{}, fmt.Errorf("find todo by entity id %d: %w", entityID, err)
	}

	return todo, nil
}

func (tr *TodoRepository) Save(ctx context.Context, todo *domain.Todo) error {
	if todo.IsPersisted() {
		return tr.update(ctx, todo)
	}

	return tr.insert(ctx, todo)
}

func (tr *TodoRepository) insert(ctx context.Context, todo *domain.Todo) error {
	now := database.Normalize(tr.clock())

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns(todoColumns[1:]...).
		Values(
			todo.EntityID,
			todo.Title,
			todo.Description,
			todo.Completed,
			todo.Priority.String(),
			sqlite.FormatNullableTime(todo.DueDate),
			todo.AssignedTo,
			todo.UserID,
			sqlite.FormatTime(now),
			sqlite.FormatTime(now),
		).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tr.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert todo %d: %w", todo.EntityID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert todo %d: %w", todo.EntityID, err)
	}

	todo.ID = id
	todo.CreatedAt = now
	todo.UpdatedAt = now

	return nil
}

func (tr *TodoRepository) update(ctx context.Context, todo *domain.Todo) error {
	updatedAt := database.NextUpdate(todo.UpdatedAt, tr.clock())

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(map[string]any{
			"title":       todo.Title,
			"description": todo.Description,
			"completed":   todo.Completed,
			"priority":    todo.Priority.String(),
			"due_date":    sqlite.FormatNullableTime(todo.DueDate),
			"assigned_to": todo.AssignedTo,
			"user_id":     todo.UserID,
			"updated_at":  sqlite.FormatTime(updatedAt),
		}).
		Where(sq.Eq{"id": todo.ID}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tr.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", todo.ID, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrRecordNotFound
	}

	todo.UpdatedAt = updatedAt

	return nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tr.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (tr *TodoRepository) selectTodos() sq.SelectBuilder {
	return tr.db.QueryBuilder.Select(todoColumns...).From("todos")
}

func (tr *TodoRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]domain.Todo, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tr.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}

	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (domain.Todo, error) {
	var (
		todo                    domain.Todo
		priority                string
		description, assignedTo sql.NullString
		dueDate                 sql.NullString
		userID                  sql.NullInt64
		createdAt, updatedAt    string
	)

	err := row.Scan(
		&todo.ID,
		&todo.EntityID,
		&todo.Title,
		&description,
		&todo.Completed,
		&priority,
		&dueDate,
		&assignedTo,
		&userID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Todo{}, err
	}

	todo.Priority = domain.Priority(priority)

	if description.Valid {
		todo.Description = &description.String
	}

	if assignedTo.Valid {
		todo.AssignedTo = &assignedTo.String
	}

	if userID.Valid {
		todo.UserID = &userID.Int64
	}

	if todo.DueDate, err = sqlite.ParseNullableTime(dueDate); err != nil {
		return domain.Todo{}, fmt.Errorf("parse due_date: %w", err)
	}

	if todo.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return domain.Todo{}, fmt.Errorf("parse created_at: %w", err)
	}

	if todo.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return domain.Todo{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return todo, nil
}
