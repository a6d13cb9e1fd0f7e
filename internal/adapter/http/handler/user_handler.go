package handler

import (
	"net/http"

	. "doitnow/internal/adapter/http/helper"
	"doitnow/internal/core/mapper"
	"doitnow/internal/core/model/request"
	"doitnow/internal/core/port"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type UserHandler struct {
	svc port.UserService
}

func NewUserHandler(svc port.UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	ctx, span := startSpan(c, "user", "GetAllUsers")
	defer span.End()

	users, err := h.svc.ListAll(ctx)
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToUserResponses(users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	ctx, span := startSpan(c, "user", "GetUser")
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int64("user.id", id))

	user, err := h.svc.GetByID(ctx, id)
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToUserResponse(user))
}

func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	ctx, span := startSpan(c, "user", "GetUserByUsername")
	defer span.End()

	user, err := h.svc.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToUserResponse(user))
}

func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	ctx, span := startSpan(c, "user", "GetUserByEmail")
	defer span.End()

	user, err := h.svc.GetByEmail(ctx, c.Param("email"))
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToUserResponse(user))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx, span := startSpan(c, "user", "CreateUser")
	defer span.End()

	var params request.UserRequest

	if !bindBody(c, &params) {
		return
	}

	user, err := h.svc.Create(ctx, params)
	if err != nil {
		fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))

	SendSuccess(c, http.StatusCreated, mapper.ToUserResponse(user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx, span := startSpan(c, "user", "UpdateUser")
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var params request.UserRequest

	if !bindBody(c, &params) {
		return
	}

	user, err := h.svc.Update(ctx, id, params)
	if err != nil {
		fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, mapper.ToUserResponse(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx, span := startSpan(c, "user", "DeleteUser")
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		fail(c, span, err)
		return
	}

	SendNoContent(c)
}
