package handler

import (
	"context"
	"net/http"
	"time"

	. "doitnow/internal/adapter/http/helper"
	"doitnow/internal/core/model/response"
	"doitnow/internal/core/port"

	"github.com/gin-gonic/gin"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

type HealthHandler struct {
	db      port.HealthChecker
	timeout time.Duration
}

func NewHealthHandler(db port.HealthChecker) *HealthHandler {
	return &HealthHandler{
		db:      db,
		timeout: 2 * time.Second,
	}
}

// Health answers 503 when the store cannot be reached.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(err)

		SendSuccess(c, http.StatusServiceUnavailable, response.HealthResponse{
			Status:   statusDown,
			Database: statusDown,
		})
		return
	}

	SendSuccess(c, http.StatusOK, response.HealthResponse{
		Status:   statusUp,
		Database: statusUp,
	})
}
