package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrInternal, ErrServiceUnavail}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("socket closed")}
	assert.Equal(t, "INTERNAL_ERROR: boom: socket closed", withCause.Error())

	plain := &AppError{Code: "NOT_FOUND", Message: "index products not found"}
	assert.Equal(t, "NOT_FOUND: index products not found", plain.Error())
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("product", "id", "p-1")

	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, `"p-1"`)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestServiceUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:9200: connect: connection refused")
	err := ServiceUnavailable("search engine", cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, "search engine is unavailable", err.Message)
	assert.ErrorIs(t, err, ErrServiceUnavail)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad count"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("search: %w", ServiceUnavailable("es", errors.New("x"))), http.StatusServiceUnavailable},
		{"sentinel not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"sentinel exists", ErrAlreadyExists, http.StatusConflict},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"internal", Internal(errors.New("x")), http.StatusInternalServerError},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
