package request

import "time"

// TodoRequest is the body of POST and PUT /api/todos. Optional fields are
// pointers so that absent values can be told apart from zero values.
type TodoRequest struct {
	EntityID    *int64     `json:"entityId" validate:"required"`
	Title       string     `json:"title" validate:"notblank,max=255"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo" validate:"omitempty,max=255"`
	UserID      *int64     `json:"userId" validate:"omitempty,gt=0"`
}

type UserRequest struct {
	Username string `json:"username" validate:"notblank,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

type DueDateRangeQuery struct {
	Start time.Time
	End   time.Time
}
