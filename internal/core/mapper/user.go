package mapper

import (
	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/model/response"
)

func ToUserResponse(user domain.User) response.UserResponse {
	return response.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func ToUserResponses(users []domain.User) []response.UserResponse {
	data := make([]response.UserResponse, 0, len(users))

	for _, user := range users {
		data = append(data, ToUserResponse(user))
	}

	return data
}

func ToUserEntity(req request.UserRequest) domain.User {
	return domain.User{
		Username: req.Username,
		Email:    req.Email,
	}
}

// ApplyUserUpdate copies Username and Email. ID, CreatedAt and the todos
// relation are never touched.
func ApplyUserUpdate(req request.UserRequest, user *domain.User) {
	user.Username = req.Username
	user.Email = req.Email
}
