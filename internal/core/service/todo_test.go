package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "doitnow/pkg/test"

	"doitnow/internal/adapter/database/sqlite/repository"
	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/port"
	"doitnow/internal/core/service"
	"doitnow/pkg/logger"
	"doitnow/pkg/test/factory"
)

type recorder struct {
	mu   sync.Mutex
	todo []string
	user []string
}

func (r *recorder) RecordTodoOperation(_ context.Context, operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.todo = append(r.todo, operation)
}

func (r *recorder) RecordUserOperation(_ context.Context, operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user = append(r.user, operation)
}

type TodoServiceTestSuite struct {
	suite.Suite
	Service  *service.TodoService
	TodoRepo port.TodoRepository
	UserRepo port.UserRepository
	metrics  *recorder
	ctx      context.Context
}

func (s *TodoServiceTestSuite) SetupTest() {
	db := InitTestDB()

	s.TodoRepo = repository.NewTodoRepository(db)
	s.UserRepo = repository.NewUserRepository(db)
	s.metrics = &recorder{}
	s.Service = service.NewTodoService(s.TodoRepo, s.UserRepo, db, s.metrics, logger.NewNop())
	s.ctx = context.Background()

	s.T().Cleanup(func() {
		db.Close()
	})
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(TodoServiceTestSuite))
}

func todoRequest(entityID int64, title string) request.TodoRequest {
	return request.TodoRequest{
		EntityID: Ptr(entityID),
		Title:    title,
	}
}

func (s *TodoServiceTestSuite) TestListAll_Empty() {
	todos, err := s.Service.ListAll(s.ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestCreate_AppliesDefaults() {
	todo, err := s.Service.Create(s.ctx, todoRequest(1, "Buy milk"))

	Expect(err).To(BeNil())
	Expect(todo.ID).NotTo(BeZero())
	Expect(todo.EntityID).To(Equal(int64(1)))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.Priority).To(Equal(domain.PriorityMedium))
	Expect(todo.CreatedAt).To(Equal(todo.UpdatedAt))
	Expect(s.metrics.todo).To(ContainElement("create"))
}

func (s *TodoServiceTestSuite) TestCreate_KeepsProvidedFields() {
	due := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	req := todoRequest(2, "Ship release")
	req.Completed = Ptr(true)
	req.Priority = Ptr("high")
	req.DueDate = &due
	req.Description = Ptr("v1.2")
	req.AssignedTo = Ptr("ops")

	todo, err := s.Service.Create(s.ctx, req)
	Expect(err).To(BeNil())

	found, err := s.Service.GetByKey(s.ctx, 2)
	Expect(err).To(BeNil())

	assert.Equal(s.T(), todo.ID, found.ID)
	assert.True(s.T(), found.Completed)
	assert.Equal(s.T(), domain.PriorityHigh, found.Priority)
	assert.True(s.T(), found.DueDate.Equal(due))
	assert.Equal(s.T(), "v1.2", *found.Description)
	assert.Equal(s.T(), "ops", *found.AssignedTo)
}

func (s *TodoServiceTestSuite) TestCreate_DuplicateEntityIDIsInternal() {
	_, err := s.Service.Create(s.ctx, todoRequest(3, "first"))
	Expect(err).To(BeNil())

	_, err = s.Service.Create(s.ctx, todoRequest(3, "second"))
	Expect(err).To(HaveOccurred())
	Expect(domain.IsNotFound(err)).To(BeFalse())
	Expect(domain.IsConflict(err)).To(BeFalse())

	todos, _ := s.Service.ListAll(s.ctx)
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("first"))
}

func (s *TodoServiceTestSuite) TestCreate_UnknownUser() {
	req := todoRequest(4, "owned")
	req.UserID = Ptr(int64(77))

	_, err := s.Service.Create(s.ctx, req)

	Expect(err).To(MatchError("User not found with id: 77"))
	Expect(domain.IsNotFound(err)).To(BeTrue())

	todos, _ := s.Service.ListAll(s.ctx)
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestCreate_WithOwner() {
	user := factory.NewUser()
	s.Require().NoError(s.UserRepo.Save(s.ctx, &user))

	req := todoRequest(5, "owned")
	req.UserID = Ptr(user.ID)

	todo, err := s.Service.Create(s.ctx, req)

	Expect(err).To(BeNil())
	Expect(todo.UserID).To(HaveValue(Equal(user.ID)))
}

func (s *TodoServiceTestSuite) TestGetByKey_NotFound() {
	_, err := s.Service.GetByKey(s.ctx, 404)

	Expect(err).To(MatchError("Todo not found with id: 404"))
}

func (s *TodoServiceTestSuite) TestListFilters() {
	for i, data := range []struct {
		completed bool
		priority  string
	}{
		{true, "high"},
		{false, "high"},
		{false, "low"},
	} {
		req := todoRequest(int64(10+i), "filtered")
		req.Completed = Ptr(data.completed)
		req.Priority = Ptr(data.priority)

		_, err := s.Service.Create(s.ctx, req)
		s.Require().NoError(err)
	}

	done, err := s.Service.ListByCompleted(s.ctx, true)
	Expect(err).To(BeNil())
	Expect(done).To(HaveLen(1))

	high, err := s.Service.ListByPriority(s.ctx, "high")
	Expect(err).To(BeNil())
	Expect(high).To(HaveLen(2))

	unknown, err := s.Service.ListByPriority(s.ctx, "urgent")
	Expect(err).To(BeNil())
	Expect(unknown).To(BeEmpty())

	open, err := s.Service.ListByCompletedOrderByDueDate(s.ctx, false)
	Expect(err).To(BeNil())
	Expect(open).To(HaveLen(2))
}

func (s *TodoServiceTestSuite) TestListByDueDateRange() {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	for i, due := range []time.Time{start, end, end.Add(time.Second)} {
		req := todoRequest(int64(20+i), "due")
		req.DueDate = Ptr(due)

		_, err := s.Service.Create(s.ctx, req)
		s.Require().NoError(err)
	}

	todos, err := s.Service.ListByDueDateRange(s.ctx, start, end)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))

	empty, err := s.Service.ListByDueDateRange(s.ctx, end, start)
	Expect(err).To(BeNil())
	Expect(empty).NotTo(BeNil())
	Expect(empty).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestUpdate_FullReplace() {
	req := todoRequest(30, "original")
	req.Description = Ptr("details")
	req.Priority = Ptr("high")
	req.Completed = Ptr(true)

	created, err := s.Service.Create(s.ctx, req)
	s.Require().NoError(err)

	updated, err := s.Service.Update(s.ctx, 30, todoRequest(30, "replaced"))
	Expect(err).To(BeNil())

	Expect(updated.ID).To(Equal(created.ID))
	Expect(updated.EntityID).To(Equal(int64(30)))
	Expect(updated.Title).To(Equal("replaced"))
	Expect(updated.Description).To(BeNil())
	Expect(updated.Completed).To(BeFalse())
	Expect(updated.Priority).To(Equal(domain.PriorityMedium))
	Expect(updated.CreatedAt).To(BeTemporally("==", created.CreatedAt))
	Expect(updated.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
}

func (s *TodoServiceTestSuite) TestUpdate_LooksUpByBodyEntityID() {
	_, err := s.Service.Create(s.ctx, todoRequest(40, "target"))
	s.Require().NoError(err)

	updated, err := s.Service.Update(s.ctx, 999, todoRequest(40, "via body"))
	Expect(err).To(BeNil())
	Expect(updated.EntityID).To(Equal(int64(40)))
	Expect(updated.Title).To(Equal("via body"))

	_, err = s.Service.Update(s.ctx, 41, todoRequest(12345, "missing"))
	Expect(err).To(MatchError("Todo not found with id: 41"))
}

func (s *TodoServiceTestSuite) TestToggleCompleted_Twice() {
	created, err := s.Service.Create(s.ctx, todoRequest(50, "toggle me"))
	s.Require().NoError(err)

	first, err := s.Service.ToggleCompleted(s.ctx, 50)
	Expect(err).To(BeNil())
	Expect(first.Completed).To(BeTrue())

	second, err := s.Service.ToggleCompleted(s.ctx, 50)
	Expect(err).To(BeNil())
	Expect(second.Completed).To(Equal(created.Completed))

	Expect(first.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
	Expect(second.UpdatedAt.After(first.UpdatedAt)).To(BeTrue())

	_, err = s.Service.ToggleCompleted(s.ctx, 51)
	Expect(domain.IsNotFound(err)).To(BeTrue())
}

func (s *TodoServiceTestSuite) TestDelete() {
	_, err := s.Service.Create(s.ctx, todoRequest(60, "bye"))
	s.Require().NoError(err)

	Expect(s.Service.Delete(s.ctx, 60)).To(Succeed())

	_, err = s.Service.GetByKey(s.ctx, 60)
	Expect(err).To(MatchError("Todo not found with id: 60"))
}

func (s *TodoServiceTestSuite) TestDelete_AbsentLeavesStoreUntouched() {
	_, err := s.Service.Create(s.ctx, todoRequest(70, "stays"))
	s.Require().NoError(err)

	err = s.Service.Delete(s.ctx, 71)
	Expect(err).To(MatchError("Todo not found with id: 71"))

	todos, _ := s.Service.ListAll(s.ctx)
	Expect(todos).To(HaveLen(1))
	Expect(s.metrics.todo).NotTo(ContainElement("delete"))
}
