package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&UpdateTicketRequest{Status: "Pending", Severity: "Low"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Equal(t, "must be one of Open, InProgress, Resolved, Closed", domainErr.Details["status"])
	assert.NotContains(t, domainErr.Details, "severity")
}

func TestValidatorEnumRules(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&CreateTicketRequest{Title: "Printer"}), "severity is optional on create")
	assert.Error(t, v.Validate(&CreateTicketRequest{Title: "Printer", Severity: "Urgent"}))
	assert.NoError(t, v.Validate(&CreateUserRequest{Username: "u", Password: "secret1", Role: "JuniorOfficer", DepartmentID: 1}))

	err := v.Validate(&CreateUserRequest{Username: "u", Password: "123", Role: "Root", DepartmentID: 1})
	domainErr := apperrors.ToDomainError(err)
	assert.Contains(t, domainErr.Details, "role")
	assert.Contains(t, domainErr.Details, "password")
}

func TestValidatorPasswordConfirmation(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&ChangePasswordRequest{CurrentPassword: "old", NewPassword: "secret1", ConfirmPassword: "secret2"})
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "must match NewPassword", domainErr.Details["confirmPassword"])
}
