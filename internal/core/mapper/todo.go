package mapper

import (
	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/model/response"
)

func ToTodoResponse(todo domain.Todo) response.TodoResponse {
	return response.TodoResponse{
		ID:          todo.ID,
		EntityID:    todo.EntityID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		Priority:    todo.Priority.String(),
		DueDate:     todo.DueDate,
		AssignedTo:  todo.AssignedTo,
		UserID:      todo.UserID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

func ToTodoResponses(todos []domain.Todo) []response.TodoResponse {
	data := make([]response.TodoResponse, 0, len(todos))

	for _, todo := range todos {
		data = append(data, ToTodoResponse(todo))
	}

	return data
}

// ToTodoEntity copies the client-owned fields. ID, CreatedAt and UpdatedAt
// are left zero for the store to assign; absent optional values stay absent
// so the service can apply its defaults.
func ToTodoEntity(req request.TodoRequest) domain.Todo {
	todo := domain.Todo{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		UserID:      req.UserID,
	}

	if req.EntityID != nil {
		todo.EntityID = *req.EntityID
	}

	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	if req.Priority != nil {
		todo.Priority = domain.Priority(*req.Priority)
	}

	return todo
}

// ApplyTodoUpdate is a full replace of the mutable fields:
//
//	copied:   Title, Description, Completed, Priority, DueDate, AssignedTo, UserID
//	excluded: ID, EntityID, CreatedAt, UpdatedAt
//
// Absent request values overwrite the target too. Completed and Priority
// fall back to the request defaults (false, "medium").
func ApplyTodoUpdate(req request.TodoRequest, todo *domain.Todo) {
	todo.Title = req.Title
	todo.Description = req.Description
	todo.DueDate = req.DueDate
	todo.AssignedTo = req.AssignedTo
	todo.UserID = req.UserID

	todo.Completed = false
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	todo.Priority = domain.DefaultPriority
	if req.Priority != nil {
		todo.Priority = domain.Priority(*req.Priority)
	}
}
