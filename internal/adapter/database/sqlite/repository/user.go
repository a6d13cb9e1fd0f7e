package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"doitnow/internal/adapter/database"
	"doitnow/internal/adapter/database/sqlite"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/port"
)

type UserRepository struct {
	db    *sqlite.DB
	clock database.Clock
}

func NewUserRepository(db *sqlite.DB) port.UserRepository {
	return &UserRepository{db: db, clock: database.SystemClock}
}

func (ur *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	query, args, err := ur.selectUsers().OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := ur.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (ur *UserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	return ur.findOne(ctx, sq.Eq{"id": id})
}

func (ur *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return ur.findOne(ctx, sq.Eq{"username": username})
}

func (ur *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.findOne(ctx, sq.Eq{"email": email})
}

func (ur *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return ur.exists(ctx, sq.Eq{"username": username})
}

func (ur *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return ur.exists(ctx, sq.Eq{"email": email})
}

func (ur *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if user.IsPersisted() {
		return ur.update(ctx, user)
	}

	now := database.Normalize(ur.clock())

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("username", "email", "created_at").
		Values(user.Username, user.Email, sqlite.FormatTime(now)).
		ToSql()
	if err != nil {
		return err
	}

	result, err := ur.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", user.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user %s: %w", user.Username, err)
	}

	user.ID = id
	user.CreatedAt = now

	return nil
}

func (ur *UserRepository) update(ctx context.Context, user *domain.User) error {
	query, args, err := ur.db.QueryBuilder.Update("users").
		Set("username", user.Username).
		Set("email", user.Email).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := ur.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// DeleteByID removes the user; its todos go with it through the foreign key.
func (ur *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := ur.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (ur *UserRepository) selectUsers() sq.SelectBuilder {
	return ur.db.QueryBuilder.Select("id", "username", "email", "created_at").From("users")
}

func (ur *UserRepository) findOne(ctx context.Context, where sq.Eq) (domain.User, error) {
	query, args, err := ur.selectUsers().Where(where).Limit(1).ToSql()
	if err != nil {
		return domain.User{}, err
	}

	user, err := scanUser(ur.db.Executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

func (ur *UserRepository) exists(ctx context.Context, where sq.Eq) (bool, error) {
	query, args, err := ur.db.QueryBuilder.Select("COUNT(1)").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int64
	if err := ur.db.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}

	return count > 0, nil
}

func scanUser(row scanner) (domain.User, error) {
	var (
		user      domain.User
		createdAt string
	)

	if err := row.Scan(&user.ID, &user.Username, &user.Email, &createdAt); err != nil {
		return domain.User{}, err
	}

	t, err := sqlite.ParseTime(createdAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse created_at: %w", err)
	}

	user.CreatedAt = t

	return user, nil
}
