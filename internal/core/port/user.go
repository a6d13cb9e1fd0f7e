package port

import (
	"context"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/request"
)

type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *domain.User) error
	DeleteByID(ctx context.Context, id int64) error
}

type UserService interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, req request.UserRequest) (domain.User, error)
	Update(ctx context.Context, id int64, req request.UserRequest) (domain.User, error)
	Delete(ctx context.Context, id int64) error
}
