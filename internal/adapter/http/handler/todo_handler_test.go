package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "doitnow/pkg/test"

	"doitnow/internal/adapter/database/sqlite"
	"doitnow/internal/adapter/database/sqlite/repository"
	"doitnow/internal/adapter/http/handler"
	"doitnow/internal/adapter/http/routes"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/response"
	"doitnow/internal/core/port"
	"doitnow/internal/core/service"
	"doitnow/pkg/logger"
	"doitnow/pkg/test/factory"
)

var ctx = context.Background()

type TodoHandlerSuite struct {
	suite.Suite
	DB       *sqlite.DB
	UserRepo port.UserRepository
	TodoRepo port.TodoRepository
	Router   *gin.Engine
}

func (s *TodoHandlerSuite) SetupTest() {
	s.DB = InitTestDB()

	s.TodoRepo = repository.NewTodoRepository(s.DB)
	s.UserRepo = repository.NewUserRepository(s.DB)

	todoService := service.NewTodoService(s.TodoRepo, s.UserRepo, s.DB, nil, logger.NewNop())
	s.Router = routes.SetupRouterForTests(routes.HandlersConfig{
		TodoHandler: handler.NewTodoHandler(todoService),
	})
}

func (s *TodoHandlerSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTodoHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoHandlerSuite))
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request

	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func decode[T any](rr *httptest.ResponseRecorder) T {
	var out T
	Expect(json.Unmarshal(rr.Body.Bytes(), &out)).To(Succeed())
	return out
}

func (s *TodoHandlerSuite) createTodo(data map[string]any) domain.Todo {
	todo := factory.NewTodo(data)
	Expect(s.TodoRepo.Save(ctx, &todo)).To(Succeed())
	return todo
}

func (s *TodoHandlerSuite) TestGetAllTodos_Empty() {
	rr := serve(s.Router, http.MethodGet, "/api/todos", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	Expect(strings.TrimSpace(rr.Body.String())).To(Equal("[]"))
}

func (s *TodoHandlerSuite) TestGetAllTodos_WithData() {
	s.createTodo(map[string]any{"Title": "first"})
	s.createTodo(map[string]any{"Title": "second", "Completed": true, "Priority": domain.PriorityHigh})

	rr := serve(s.Router, http.MethodGet, "/api/todos", "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	todos := decode[[]response.TodoResponse](rr)
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].Title).To(Equal("first"))
	Expect(todos[1].Title).To(Equal("second"))
}

func (s *TodoHandlerSuite) TestGetAllTodos_Filters() {
	s.createTodo(map[string]any{"Title": "open high", "Priority": domain.PriorityHigh})
	s.createTodo(map[string]any{"Title": "done low", "Completed": true, "Priority": domain.PriorityLow})

	rr := serve(s.Router, http.MethodGet, "/api/todos?completed=true", "")
	todos := decode[[]response.TodoResponse](rr)
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("done low"))

	rr = serve(s.Router, http.MethodGet, "/api/todos?priority=high", "")
	todos = decode[[]response.TodoResponse](rr)
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("open high"))

	rr = serve(s.Router, http.MethodGet, "/api/todos?priority=urgent", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[[]response.TodoResponse](rr)).To(BeEmpty())
}

func (s *TodoHandlerSuite) TestGetAllTodos_CompletedWinsOverPriority() {
	s.createTodo(map[string]any{"Title": "open high", "Priority": domain.PriorityHigh})
	s.createTodo(map[string]any{"Title": "open low", "Priority": domain.PriorityLow})

	rr := serve(s.Router, http.MethodGet, "/api/todos?completed=false&priority=high", "")

	Expect(decode[[]response.TodoResponse](rr)).To(HaveLen(2))
}

func (s *TodoHandlerSuite) TestGetAllTodos_SortByDueDate() {
	later := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	s.createTodo(map[string]any{"Title": "no due date"})
	s.createTodo(map[string]any{"Title": "later", "DueDate": &later})
	s.createTodo(map[string]any{"Title": "sooner", "DueDate": &sooner})

	rr := serve(s.Router, http.MethodGet, "/api/todos?completed=false&sort=dueDate", "")
	todos := decode[[]response.TodoResponse](rr)

	Expect(todos).To(HaveLen(3))
	Expect(todos[0].Title).To(Equal("sooner"))
	Expect(todos[1].Title).To(Equal("later"))
	Expect(todos[2].Title).To(Equal("no due date"))
}

func (s *TodoHandlerSuite) TestGetAllTodos_InvalidCompleted() {
	rr := serve(s.Router, http.MethodGet, "/api/todos?completed=maybe", "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decode[response.ErrorResponse](rr)
	Expect(body.Error).To(Equal("Bad Request"))
	Expect(body.Message).To(ContainSubstring("completed"))
}

func (s *TodoHandlerSuite) TestGetTodosByDueDate() {
	inside := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)

	s.createTodo(map[string]any{"Title": "inside", "DueDate": &inside})
	s.createTodo(map[string]any{"Title": "outside", "DueDate": &outside})

	rr := serve(s.Router, http.MethodGet, "/api/todos/due-date?start=2025-01-01T00:00:00Z&end=2025-01-31T23:59:59Z", "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	todos := decode[[]response.TodoResponse](rr)
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("inside"))
}

func (s *TodoHandlerSuite) TestGetTodosByDueDate_AcceptsUnescapedOffset() {
	due := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s.createTodo(map[string]any{"Title": "inside", "DueDate": &due})

	rr := serve(s.Router, http.MethodGet, "/api/todos/due-date?start=2025-01-15T11:00:00+01:00&end=2025-01-15T11:00:00+01:00", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[[]response.TodoResponse](rr)).To(HaveLen(1))
}

func (s *TodoHandlerSuite) TestGetTodosByDueDate_SubMicrosecondStart() {
	due := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s.createTodo(map[string]any{"Title": "on the hour", "DueDate": &due})

	rr := serve(s.Router, http.MethodGet, "/api/todos/due-date?start=2025-01-01T10:00:00.0000009Z&end=2025-01-01T11:00:00Z", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[[]response.TodoResponse](rr)).To(BeEmpty())

	rr = serve(s.Router, http.MethodGet, "/api/todos/due-date?start=2025-01-01T09:59:59.9999999Z&end=2025-01-01T10:00:00.0000009Z", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[[]response.TodoResponse](rr)).To(HaveLen(1))
}

func (s *TodoHandlerSuite) TestGetTodosByDueDate_BadBounds() {
	rr := serve(s.Router, http.MethodGet, "/api/todos/due-date?start=2025-01-01T00:00:00Z", "")
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Message).To(Equal("Missing required parameter: end"))

	rr = serve(s.Router, http.MethodGet, "/api/todos/due-date?start=yesterday&end=2025-01-01T00:00:00Z", "")
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Message).To(ContainSubstring("start"))
}

func (s *TodoHandlerSuite) TestGetTodo_NotFound() {
	rr := serve(s.Router, http.MethodGet, "/api/todos/999", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))

	body := decode[response.ErrorResponse](rr)
	Expect(body.Status).To(Equal(http.StatusNotFound))
	Expect(body.Error).To(Equal("Not Found"))
	Expect(body.Message).To(Equal("Todo not found with id: 999"))
	Expect(body.Path).To(Equal("/api/todos/999"))
}

func (s *TodoHandlerSuite) TestGetTodo_InvalidID() {
	rr := serve(s.Router, http.MethodGet, "/api/todos/abc", "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestCreateTodo() {
	rr := serve(s.Router, http.MethodPost, "/api/todos", `{"entityId": 100, "title": "Write report", "dueDate": "2025-05-01T09:00:00+02:00"}`)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	todo := decode[response.TodoResponse](rr)
	Expect(todo.ID).NotTo(BeZero())
	Expect(todo.EntityID).To(Equal(int64(100)))
	Expect(todo.Title).To(Equal("Write report"))
	Expect(todo.Priority).To(Equal("medium"))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.CreatedAt).To(BeTemporally("==", todo.UpdatedAt))
	Expect(*todo.DueDate).To(BeTemporally("==", time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)))
}

func (s *TodoHandlerSuite) TestCreateTodo_ValidationErrors() {
	rr := serve(s.Router, http.MethodPost, "/api/todos", `{"title": "", "priority": "urgent"}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decode[response.ValidationErrorResponse](rr)
	Expect(body.Error).To(Equal("Validation Failed"))
	Expect(body.Errors).To(Equal(map[string]string{
		"entityId": "Entity ID is required",
		"title":    "Title is required",
		"priority": "Priority must be low, medium, or high",
	}))
	Expect(body.Path).To(Equal("/api/todos"))
}

func (s *TodoHandlerSuite) TestCreateTodo_MalformedJSON() {
	rr := serve(s.Router, http.MethodPost, "/api/todos", `{"entityId": `)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error).To(Equal("Bad Request"))
}

func (s *TodoHandlerSuite) TestCreateTodo_DuplicateEntityID() {
	s.createTodo(map[string]any{"EntityID": int64(7)})

	rr := serve(s.Router, http.MethodPost, "/api/todos", `{"entityId": 7, "title": "again"}`)

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))
	Expect(decode[response.ErrorResponse](rr).Error).To(Equal("Internal Server Error"))
}

func (s *TodoHandlerSuite) TestCreateTodo_UnknownUser() {
	rr := serve(s.Router, http.MethodPost, "/api/todos", `{"entityId": 8, "title": "orphan", "userId": 404}`)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](rr).Message).To(Equal("User not found with id: 404"))
}

func (s *TodoHandlerSuite) TestUpdateTodo() {
	todo := s.createTodo(map[string]any{"Title": "Draft", "Priority": domain.PriorityLow})

	body := fmt.Sprintf(`{"entityId": %d, "title": "Final", "completed": true, "priority": "high"}`, todo.EntityID)
	rr := serve(s.Router, http.MethodPut, fmt.Sprintf("/api/todos/%d", todo.EntityID), body)

	Expect(rr.Code).To(Equal(http.StatusOK))

	updated := decode[response.TodoResponse](rr)
	Expect(updated.ID).To(Equal(todo.ID))
	Expect(updated.Title).To(Equal("Final"))
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Priority).To(Equal("high"))
	Expect(updated.UpdatedAt).To(BeTemporally(">", updated.CreatedAt))
}

func (s *TodoHandlerSuite) TestUpdateTodo_NotFound() {
	rr := serve(s.Router, http.MethodPut, "/api/todos/555", `{"entityId": 555, "title": "ghost"}`)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](rr).Message).To(Equal("Todo not found with id: 555"))
}

func (s *TodoHandlerSuite) TestUpdateTodo_ValidationError() {
	todo := s.createTodo(map[string]any{})

	rr := serve(s.Router, http.MethodPut, fmt.Sprintf("/api/todos/%d", todo.EntityID), `{"title": "no key"}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ValidationErrorResponse](rr).Errors).To(HaveKeyWithValue("entityId", "Entity ID is required"))
}

func (s *TodoHandlerSuite) TestToggleTodo_NotFound() {
	rr := serve(s.Router, http.MethodPatch, "/api/todos/404/toggle", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TodoHandlerSuite) TestDeleteTodo_NotFound() {
	rr := serve(s.Router, http.MethodDelete, "/api/todos/404", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](rr).Message).To(Equal("Todo not found with id: 404"))
}

func (s *TodoHandlerSuite) TestTodoLifecycle() {
	rr := serve(s.Router, http.MethodPost, "/api/todos", `{"entityId": 42, "title": "Buy milk"}`)
	Expect(rr.Code).To(Equal(http.StatusCreated))

	created := decode[response.TodoResponse](rr)
	Expect(created.Completed).To(BeFalse())
	Expect(created.Priority).To(Equal("medium"))

	rr = serve(s.Router, http.MethodPatch, "/api/todos/42/toggle", "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	toggled := decode[response.TodoResponse](rr)
	Expect(toggled.Completed).To(BeTrue())
	Expect(toggled.UpdatedAt).To(BeTemporally(">", created.UpdatedAt))

	rr = serve(s.Router, http.MethodGet, "/api/todos/42", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.TodoResponse](rr).Completed).To(BeTrue())

	rr = serve(s.Router, http.MethodDelete, "/api/todos/42", "")
	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(rr.Body.Len()).To(BeZero())

	rr = serve(s.Router, http.MethodGet, "/api/todos/42", "")
	Expect(rr.Code).To(Equal(http.StatusNotFound))
}
