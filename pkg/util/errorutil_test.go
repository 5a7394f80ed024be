package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))

	notFound := ToDomainError(fmt.Errorf("load ticket: %w", pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	wrapped := ToDomainError(fmt.Errorf("get: %w", ErrNotFound))
	assert.Equal(t, "NOT_FOUND", wrapped.Code)

	denied := ToDomainError(NewPolicyDenied("cross-department access", 0, nil))
	assert.Equal(t, http.StatusForbidden, denied.HTTPStatus)
	assert.Equal(t, "POLICY_DENIED", denied.Code)
	assert.Equal(t, "cross-department access", denied.Error())

	dup := ToDomainError(fmt.Errorf("insert: %w", ErrDuplicate))
	assert.Equal(t, http.StatusConflict, dup.HTTPStatus)

	routeMissing := ToDomainError(fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, http.StatusMethodNotAllowed, routeMissing.HTTPStatus)
	assert.Equal(t, "METHOD_NOT_ALLOWED", routeMissing.Code)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error: boom", internal.Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(NewForbidden("nope")))
	assert.False(t, IsNotFound(nil))
}
