package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("Recipe not found")

	assert.True(t, Is(err, NotFound("anything")))
	assert.False(t, Is(err, Validation("anything")))

	wrapped := fmt.Errorf("get recipe: %w", err)
	assert.True(t, Is(wrapped, NotFound("")))
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Unavailable("store failure").WithCause(cause)

	assert.Equal(t, "store failure: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestValidationWithDetails(t *testing.T) {
	details := map[string]string{"name": "is required"}
	err := ValidationWithDetails("All fields are required", details)

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
	assert.Equal(t, details, domainErr.Details)
}
