package domain

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const DefaultPriority = PriorityMedium

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	return string(p)
}

// Todo is keyed externally by EntityID. ID is the store's surrogate key and
// is never accepted from clients.
type Todo struct {
	ID          int64
	EntityID    int64
	Title       string
	Description *string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
	AssignedTo  *string
	UserID      *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTodo() Todo {
	return Todo{
		Completed: false,
		Priority:  DefaultPriority,
	}
}

func (t *Todo) IsPersisted() bool {
	return t.ID != 0
}

func (t *Todo) Toggle() {
	t.Completed = !t.Completed
}
