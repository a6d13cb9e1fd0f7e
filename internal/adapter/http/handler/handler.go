package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	. "doitnow/internal/adapter/http/helper"
	. "doitnow/internal/adapter/http/validation"
	. "doitnow/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const malformedBodyMessage = "Malformed JSON request"

func startSpan(c *gin.Context, resource, operation string) (context.Context, trace.Span) {
	return CreateChildSpan(c.Request.Context(), "handler."+resource+"."+operation, []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
}

func fail(c *gin.Context, span trace.Span, err error) {
	AddSpanError(span, err)
	SendError(c, err)
}

// pathID parses an integer path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		SendBadRequestError(c, fmt.Sprintf("Invalid value for parameter '%s': %s", name, raw))
		return 0, false
	}

	return id, true
}

// bindBody decodes the JSON body into dst and runs its validate tags. Rule
// failures reach the client through SendError as a validation response.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		SendBadRequestError(c, malformedBodyMessage)
		return false
	}

	if err := Validate(dst); err != nil {
		SendError(c, err)
		return false
	}

	return true
}

// queryDateTime reads a required ISO-8601 date-time with offset. A literal
// "+" in the offset arrives as a space when the client did not escape it.
func queryDateTime(c *gin.Context, name string) (time.Time, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		SendBadRequestError(c, fmt.Sprintf("Missing required parameter: %s", name))
		return time.Time{}, false
	}

	value, err := time.Parse(time.RFC3339Nano, strings.ReplaceAll(raw, " ", "+"))
	if err != nil {
		SendBadRequestError(c, fmt.Sprintf("Invalid date-time for parameter '%s': %s", name, raw))
		return time.Time{}, false
	}

	return value, true
}
