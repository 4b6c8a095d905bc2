package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewInvalidTransition("bad edge", map[string]any{"from": "New"})

	mapped := ToDomainError(original)
	require.NotNil(t, mapped)
	assert.Equal(t, "INVALID_TRANSITION", mapped.Code)
	assert.Equal(t, http.StatusConflict, mapped.HTTPStatus)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("fetch job: %w", pgx.ErrNoRows))
	require.NotNil(t, mapped)
	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	require.NotNil(t, mapped)
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}

func TestIsCode(t *testing.T) {
	err := NewConflict("already settled", nil)
	assert.True(t, IsCode(err, "CONFLICT"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(errors.New("plain"), "CONFLICT"))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, "CONFLICT"))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewInternalError(cause)
	assert.True(t, errors.Is(err, cause))
}
