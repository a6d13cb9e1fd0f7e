package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"doitnow/internal/adapter/database"
	"doitnow/internal/adapter/database/postgres"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/port"
)

const usersTable = "users"

type UserRepository struct {
	db    *postgres.DB
	clock database.Clock
}

func NewUserRepository(db *postgres.DB) port.UserRepository {
	return &UserRepository{db: db, clock: database.SystemClock}
}

func (ur *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}

	err := ur.db.Span(ctx, usersTable, "FindAll", func(ctx context.Context) error {
		query, args, err := ur.selectUsers().OrderBy("id ASC").ToSql()
		if err != nil {
			return err
		}

		rows, err := ur.db.Executor(ctx).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return err
			}

			users = append(users, user)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (ur *UserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	return ur.findOne(ctx, "FindByID", sq.Eq{"id": id})
}

func (ur *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return ur.findOne(ctx, "FindByUsername", sq.Eq{"username": username})
}

func (ur *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.findOne(ctx, "FindByEmail", sq.Eq{"email": email})
}

func (ur *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return ur.exists(ctx, "ExistsByUsername", sq.Eq{"username": username})
}

func (ur *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return ur.exists(ctx, "ExistsByEmail", sq.Eq{"email": email})
}

func (ur *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if user.IsPersisted() {
		return ur.db.Span(ctx, usersTable, "Update", func(ctx context.Context) error {
			return ur.update(ctx, user)
		})
	}

	return ur.db.Span(ctx, usersTable, "Insert", func(ctx context.Context) error {
		now := database.Normalize(ur.clock())

		query, args, err := ur.db.QueryBuilder.Insert(usersTable).
			Columns("username", "email", "created_at").
			Values(user.Username, user.Email, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}

		var id int64
		if err := ur.db.Executor(ctx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("insert user %s: %w", user.Username, err)
		}

		user.ID = id
		user.CreatedAt = now

		return nil
	})
}

func (ur *UserRepository) update(ctx context.Context, user *domain.User) error {
	query, args, err := ur.db.QueryBuilder.Update(usersTable).
		Set("username", user.Username).
		Set("email", user.Email).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := ur.db.Executor(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// DeleteByID removes the user; its todos go with it through the foreign key.
func (ur *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	return ur.db.Span(ctx, usersTable, "DeleteByID", func(ctx context.Context) error {
		query, args, err := ur.db.QueryBuilder.Delete(usersTable).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}

		tag, err := ur.db.Executor(ctx).Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrRecordNotFound
		}

		return nil
	})
}

func (ur *UserRepository) selectUsers() sq.SelectBuilder {
	return ur.db.QueryBuilder.Select("id", "username", "email", "created_at").From(usersTable)
}

func (ur *UserRepository) findOne(ctx context.Context, operation string, where sq.Eq) (domain.User, error) {
	var user domain.User

	err := ur.db.Span(ctx, usersTable, operation, func(ctx context.Context) error {
		query, args, err := ur.selectUsers().Where(where).Limit(1).ToSql()
		if err != nil {
			return err
		}

		user, err = scanUser(ur.db.Executor(ctx).QueryRow(ctx, query, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	})

	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	return user, err
}

func (ur *UserRepository) exists(ctx context.Context, operation string, where sq.Eq) (bool, error) {
	var count int64

	err := ur.db.Span(ctx, usersTable, operation, func(ctx context.Context) error {
		query, args, err := ur.db.QueryBuilder.Select("COUNT(1)").
			From(usersTable).
			Where(where).
			ToSql()
		if err != nil {
			return err
		}

		return ur.db.Executor(ctx).QueryRow(ctx, query, args...).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}

	return count > 0, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User

	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return user, nil
}
