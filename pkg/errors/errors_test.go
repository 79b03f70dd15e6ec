package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
	}{
		{Unauthenticated, http.StatusUnauthorized},
		{Unauthorized, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{ValidationFailed, http.StatusUnprocessableEntity},
		{BackendUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		err := &AppError{Kind: tc.kind, Message: "x"}
		assert.Equal(t, tc.status, err.HTTPStatus())
	}
}

func TestKindOfUnclassified(t *testing.T) {
	// Anything outside the closed set reads as a backend failure.
	assert.Equal(t, BackendUnavailable, KindOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	inner := NewNotFound("episode", nil)
	wrapped := fmt.Errorf("loading: %w", inner)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, NotFound))
	assert.False(t, IsKind(wrapped, ValidationFailed))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendUnavailable(cause)
	assert.True(t, errors.Is(err, cause))
}
