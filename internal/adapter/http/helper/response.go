package helper

import (
	"errors"
	"net/http"
	"time"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "An unexpected error occurred"

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendError is the single place where errors become HTTP responses.
func SendError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		sendValidationErrors(c, validationErr.Fields)
	case errors.As(err, &notFoundErr):
		sendErrorMessage(c, http.StatusNotFound, notFoundErr.Message)
	case errors.As(err, &conflictErr):
		sendErrorMessage(c, http.StatusConflict, conflictErr.Message)
	default:
		_ = c.Error(err)
		sendErrorMessage(c, http.StatusInternalServerError, internalErrorMessage)
	}
}

func SendBadRequestError(c *gin.Context, message string) {
	sendErrorMessage(c, http.StatusBadRequest, message)
}

func sendErrorMessage(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, response.ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    statusCode,
		Error:     http.StatusText(statusCode),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

func sendValidationErrors(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, response.ValidationErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     "Validation Failed",
		Errors:    fields,
		Path:      c.Request.URL.Path,
	})
}
