package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/mapper"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/port"
	"doitnow/internal/core/telemetry"
	"doitnow/pkg/logger"
)

const userService = "user"

type UserService struct {
	users   port.UserRepository
	tx      port.Transactor
	metrics port.OperationRecorder
	logger  *logger.Logger
}

func NewUserService(users port.UserRepository, tx port.Transactor, metrics port.OperationRecorder, log *logger.Logger) *UserService {
	if metrics == nil {
		metrics = telemetry.NewNoOpRecorder()
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &UserService{
		users:   users,
		tx:      tx,
		metrics: metrics,
		logger:  log,
	}
}

func (us *UserService) ListAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := execute(ctx, us.tx, us.logger, userService, "ListAll", func(ctx context.Context) error {
		var err error
		users, err = us.users.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	us.metrics.RecordUserOperation(ctx, "list")

	return users, nil
}

func (us *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return us.get(ctx, "GetByID", func(ctx context.Context) (domain.User, error) {
		return us.users.FindByID(ctx, id)
	}, domain.UserNotFound(id))
}

func (us *UserService) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return us.get(ctx, "GetByUsername", func(ctx context.Context) (domain.User, error) {
		return us.users.FindByUsername(ctx, username)
	}, domain.NewNotFoundError("User not found with username: %s", username))
}

func (us *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return us.get(ctx, "GetByEmail", func(ctx context.Context) (domain.User, error) {
		return us.users.FindByEmail(ctx, email)
	}, domain.NewNotFoundError("User not found with email: %s", email))
}

// Create checks the username before the email, so a request clashing on both
// reports the username.
func (us *UserService) Create(ctx context.Context, req request.UserRequest) (domain.User, error) {
	user := mapper.ToUserEntity(req)

	err := execute(ctx, us.tx, us.logger, userService, "Create", func(ctx context.Context) error {
		if err := us.ensureUsernameFree(ctx, user.Username); err != nil {
			return err
		}

		if err := us.ensureEmailFree(ctx, user.Email); err != nil {
			return err
		}

		if err := us.users.Save(ctx, &user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	us.metrics.RecordUserOperation(ctx, "create")
	us.logger.InfoWithTrace(ctx, "user created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	return user, nil
}

// Update is a full replace of username and email. Each one is only checked
// for conflicts when it actually changes.
func (us *UserService) Update(ctx context.Context, id int64, req request.UserRequest) (domain.User, error) {
	var user domain.User

	err := execute(ctx, us.tx, us.logger, userService, "Update", func(ctx context.Context) error {
		var err error

		user, err = us.users.FindByID(ctx, id)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.UserNotFound(id)
		}
		if err != nil {
			return err
		}

		if req.Username != user.Username {
			if err := us.ensureUsernameFree(ctx, req.Username); err != nil {
				return err
			}
		}

		if req.Email != user.Email {
			if err := us.ensureEmailFree(ctx, req.Email); err != nil {
				return err
			}
		}

		mapper.ApplyUserUpdate(req, &user)

		if err := us.users.Save(ctx, &user); err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	us.metrics.RecordUserOperation(ctx, "update")
	us.logger.InfoWithTrace(ctx, "user updated", zap.Int64("user_id", id))

	return user, nil
}

// Delete removes the user together with the todos it owns.
func (us *UserService) Delete(ctx context.Context, id int64) error {
	err := execute(ctx, us.tx, us.logger, userService, "Delete", func(ctx context.Context) error {
		user, err := us.users.FindByID(ctx, id)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.UserNotFound(id)
		}
		if err != nil {
			return err
		}

		if err := us.users.DeleteByID(ctx, user.ID); err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	us.metrics.RecordUserOperation(ctx, "delete")
	us.logger.InfoWithTrace(ctx, "user deleted", zap.Int64("user_id", id))

	return nil
}

func (us *UserService) get(ctx context.Context, operation string, find func(context.Context) (domain.User, error), notFound error) (domain.User, error) {
	var user domain.User

	err := execute(ctx, us.tx, us.logger, userService, operation, func(ctx context.Context) error {
		var err error

		user, err = find(ctx)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return notFound
		}

		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	us.metrics.RecordUserOperation(ctx, "get")

	return user, nil
}

func (us *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	taken, err := us.users.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}

	if taken {
		return domain.NewConflictError("Username already exists: %s", username)
	}

	return nil
}

func (us *UserService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := us.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}

	if taken {
		return domain.NewConflictError("Email already exists: %s", email)
	}

	return nil
}
