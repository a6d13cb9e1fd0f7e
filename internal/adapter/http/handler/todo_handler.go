package handler

import (
	"fmt"
	"net/http"
	"strconv"

	. "doitnow/internal/adapter/http/helper"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/mapper"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/port"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type TodoHandler struct {
	svc port.TodoService
}

func NewTodoHandler(svc port.TodoService) *TodoHandler {
	return &TodoHandler{
		svc: svc,
	}
}

// GetAllTodos lists todos. The completed filter takes precedence over
// priority; sort=dueDate only applies together with completed.
func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "GetAllTodos")
	defer span.End()

	var (
		todos []domain.Todo
		err   error
	)

	completedParam, hasCompleted := c.GetQuery("completed")
	priority, hasPriority := c.GetQuery("priority")

	switch {
	case hasCompleted:
		completed, parseErr := strconv.ParseBool(completedParam)
		if parseErr != nil {
			SendBadRequestError(c, fmt.Sprintf("Invalid value for parameter 'completed': %s", completedParam))
			return
		}

		span.SetAttributes(attribute.Bool("todo.completed", completed))

		if c.Query("sort") == "dueDate" {
			todos, err = t.svc.ListByCompletedOrderByDueDate(ctx, completed)
		} else {
			todos, err = t.svc.ListByCompleted(ctx, completed)
		}
	case hasPriority:
		span.SetAttributes(attribute.String("todo.priority", priority))
		todos, err = t.svc.ListByPriority(ctx, priority)
	default:
		todos, err = t.svc.ListAll(ctx)
	}

	if err != nil {
		fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, mapper.ToTodoResponses(todos))
}

func (t *TodoHandler) GetTodosByDueDate(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "GetTodosByDueDate")
	defer span.End()

	var query request.DueDateRangeQuery
	var ok bool

	if query.Start, ok = queryDateTime(c, "start"); !ok {
		return
	}

	if query.End, ok = queryDateTime(c, "end"); !ok {
		return
	}

	todos, err := t.svc.ListByDueDateRange(ctx, query.Start, query.End)
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToTodoResponses(todos))
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "GetTodo")
	defer span.End()

	key, ok := pathID(c, "id")
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int64("todo.entity_id", key))

	todo, err := t.svc.GetByKey(ctx, key)
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToTodoResponse(todo))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "CreateTodo")
	defer span.End()

	var params request.TodoRequest

	if !bindBody(c, &params) {
		return
	}

	todo, err := t.svc.Create(ctx, params)
	if err != nil {
		fail(c, span, err)
		return
	}

	span.SetAttributes(
		attribute.Int64("todo.id", todo.ID),
		attribute.Int64("todo.entity_id", todo.EntityID),
	)

	SendSuccess(c, http.StatusCreated, mapper.ToTodoResponse(todo))
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "UpdateTodo")
	defer span.End()

	key, ok := pathID(c, "id")
	if !ok {
		return
	}

	var params request.TodoRequest

	if !bindBody(c, &params) {
		return
	}

	todo, err := t.svc.Update(ctx, key, params)
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToTodoResponse(todo))
}

func (t *TodoHandler) ToggleTodo(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "ToggleTodo")
	defer span.End()

	key, ok := pathID(c, "id")
	if !ok {
		return
	}

	todo, err := t.svc.ToggleCompleted(ctx, key)
	if err != nil {
		fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.Bool("todo.completed", todo.Completed))

	SendSuccess(c, http.StatusOK, mapper.ToTodoResponse(todo))
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := startSpan(c, "todo", "DeleteTodo")
	defer span.End()

	key, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := t.svc.Delete(ctx, key); err != nil {
		fail(c, span, err)
		return
	}

	SendNoContent(c)
}
