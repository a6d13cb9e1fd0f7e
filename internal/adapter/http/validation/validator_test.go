package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doitnow/internal/core/domain"
	"doitnow/internal/core/model/request"
)

func ptr[T any](v T) *T {
	return &v
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	return validationErr.Fields
}

func TestValidate_TodoRequest(t *testing.T) {
	t.Run("should accept a minimal request", func(t *testing.T) {
		err := Validate(request.TodoRequest{EntityID: ptr(int64(1)), Title: "Buy milk"})

		assert.NoError(t, err)
	})

	t.Run("should report missing entity id and blank title", func(t *testing.T) {
		err := Validate(request.TodoRequest{Title: "   "})
		require.Error(t, err)

		fields := fieldsOf(t, err)

		assert.Equal(t, map[string]string{
			"entityId": "Entity ID is required",
			"title":    "Title is required",
		}, fields)
	})

	t.Run("should reject long titles", func(t *testing.T) {
		err := Validate(request.TodoRequest{EntityID: ptr(int64(1)), Title: strings.Repeat("a", 256)})

		assert.Equal(t, "Title must not exceed 255 characters", fieldsOf(t, err)["title"])
	})

	t.Run("should accept a 255 character title", func(t *testing.T) {
		err := Validate(request.TodoRequest{EntityID: ptr(int64(1)), Title: strings.Repeat("a", 255)})

		assert.NoError(t, err)
	})

	t.Run("should reject unknown priorities", func(t *testing.T) {
		err := Validate(request.TodoRequest{EntityID: ptr(int64(1)), Title: "x", Priority: ptr("urgent")})

		assert.Equal(t, map[string]string{"priority": "Priority must be low, medium, or high"}, fieldsOf(t, err))
	})

	t.Run("should accept every known priority", func(t *testing.T) {
		for _, p := range []string{"low", "medium", "high"} {
			assert.NoError(t, Validate(request.TodoRequest{EntityID: ptr(int64(1)), Title: "x", Priority: ptr(p)}), p)
		}
	})
}

func TestValidate_UserRequest(t *testing.T) {
	t.Run("should report missing username and email", func(t *testing.T) {
		err := Validate(request.UserRequest{})

		assert.Equal(t, map[string]string{
			"username": "Username is required",
			"email":    "Email is required",
		}, fieldsOf(t, err))
	})

	t.Run("should reject malformed emails", func(t *testing.T) {
		err := Validate(request.UserRequest{Username: "jane", Email: "not-an-email"})

		assert.Equal(t, "Email should be valid", fieldsOf(t, err)["email"])
	})

	t.Run("should reject long usernames", func(t *testing.T) {
		err := Validate(request.UserRequest{Username: strings.Repeat("u", 51), Email: "jane@example.com"})

		assert.Equal(t, "Username must not exceed 50 characters", fieldsOf(t, err)["username"])
	})
}

func TestValidate_NonStructInput(t *testing.T) {
	err := Validate("not a struct")

	require.Error(t, err)
	assert.False(t, errors.As(err, new(*domain.ValidationError)))
}

func TestFormatValidationErrors_IgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, formatValidationErrors(errors.New("boom")))
	assert.Empty(t, formatValidationErrors(nil))
}
