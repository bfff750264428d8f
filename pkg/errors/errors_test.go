package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   string
	}{
		{NotFound("appointment", nil), http.StatusNotFound, "NOT_FOUND"},
		{BadRequest("bad input", nil), http.StatusBadRequest, "BAD_REQUEST"},
		{Unauthorized(nil), http.StatusUnauthorized, "UNAUTHORIZED"},
		{InvalidCredentials(), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{Forbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{DuplicateEmail("a@b.c"), http.StatusConflict, "DUPLICATE_EMAIL"},
		{DuplicateProfile("uid"), http.StatusConflict, "DUPLICATE_PROFILE"},
		{InvalidTransition("completed", "pending"), http.StatusConflict, "INVALID_TRANSITION"},
		{InvalidState("already has a record"), http.StatusConflict, "INVALID_STATE"},
		{InvalidSlot("past"), http.StatusBadRequest, "INVALID_SLOT"},
		{Validation("diagnosis required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{Internal(nil), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.code)
		assert.Equal(t, tc.code, tc.err.CodeString())
	}
}

func TestAsAppError(t *testing.T) {
	base := NotFound("user", nil)
	wrapped := fmt.Errorf("looking up owner: %w", base)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound, got.Code)

	_, ok = AsAppError(fmt.Errorf("plain error"))
	assert.False(t, ok)

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := fmt.Errorf("row not found")
	err := NotFound("appointment", cause)

	assert.Contains(t, err.Error(), "appointment not found")
	assert.Contains(t, err.Error(), "row not found")
	assert.ErrorIs(t, err, cause)
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := InvalidTransition("cancelled", "confirmed")
	assert.Equal(t, "cannot transition appointment from cancelled to confirmed", err.Message)
}
