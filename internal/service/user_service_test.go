package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestCreateUserRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	input := CreateUserInput{Username: "newbie", Password: "secret1", Role: domain.RoleOfficer, DepartmentID: 1}

	_, err := env.users.CreateUser(ctx, env.supervisor, input)
	requireDomainError(t, err, http.StatusForbidden, "FORBIDDEN")

	input.Role = "Manager"
	_, err = env.users.CreateUser(ctx, env.admin, input)
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	input.Role = domain.RoleOfficer
	input.Password = "123"
	_, err = env.users.CreateUser(ctx, env.admin, input)
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	input.Password = "secret1"
	input.DepartmentID = 99
	_, err = env.users.CreateUser(ctx, env.admin, input)
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	input.DepartmentID = 1
	user, err := env.users.CreateUser(ctx, env.admin, input)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "secret1"))

	_, err = env.users.CreateUser(ctx, env.admin, input)
	requireDomainError(t, err, http.StatusConflict, "CONFLICT")
}

func TestCreateAccountLinksEmployee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.CreateAccount(ctx, CreateAccountInput{EmployeeID: 4040, Username: "ghost", Password: "secret1"})
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	user, err := env.users.CreateAccount(ctx, CreateAccountInput{EmployeeID: 1, Username: "jdoe", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSignupRole, user.Role)
	assert.Equal(t, int64(DefaultSignupDepartmentID), user.DepartmentID)
	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "jane.doe@helpdesk.local", user.Email)
	require.NotNil(t, user.EmployeeID)
	assert.Equal(t, int64(1), *user.EmployeeID)
	assert.Contains(t, env.recorder.types(), events.EventUserSignedUp)

	_, err = env.users.CreateAccount(ctx, CreateAccountInput{EmployeeID: 1, Username: "jdoe2", Password: "secret1"})
	requireDomainError(t, err, http.StatusConflict, "CONFLICT")

	session, err := env.auth.Login(ctx, "jdoe", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.UpdateProfile(ctx, env.officer, env.junior.ID, ProfileInput{FullName: "Hacker"})
	requireDomainError(t, err, http.StatusForbidden, "FORBIDDEN")

	updated, err := env.users.UpdateProfile(ctx, env.officer, env.officer.ID, ProfileInput{FullName: "Olive Officer"})
	require.NoError(t, err)
	assert.Equal(t, "Olive Officer", updated.FullName)
	assert.Equal(t, "officer1@helpdesk.local", updated.Email, "blank email keeps the current value")

	_, err = env.users.UpdateProfile(ctx, env.admin, 999, ProfileInput{FullName: "Nobody"})
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.users.ChangePassword(ctx, env.admin, env.officer.ID, PasswordChangeInput{
		CurrentPassword: "off123", NewPassword: "newpass", ConfirmPassword: "newpass",
	})
	requireDomainError(t, err, http.StatusForbidden, "FORBIDDEN")

	err = env.users.ChangePassword(ctx, env.officer, env.officer.ID, PasswordChangeInput{
		CurrentPassword: "off123", NewPassword: "newpass", ConfirmPassword: "other1",
	})
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	err = env.users.ChangePassword(ctx, env.officer, env.officer.ID, PasswordChangeInput{
		CurrentPassword: "wrong", NewPassword: "newpass", ConfirmPassword: "newpass",
	})
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	require.NoError(t, env.users.ChangePassword(ctx, env.officer, env.officer.ID, PasswordChangeInput{
		CurrentPassword: "off123", NewPassword: "newpass", ConfirmPassword: "newpass",
	}))

	_, err = env.auth.Login(ctx, "officer1", "off123")
	requireDomainError(t, err, http.StatusUnauthorized, "UNAUTHORIZED")
	_, err = env.auth.Login(ctx, "officer1", "newpass")
	require.NoError(t, err)
}

func TestDepartments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.CreateDepartment(ctx, env.supervisor, "Finance")
	requireDomainError(t, err, http.StatusForbidden, "FORBIDDEN")

	dept, err := env.users.CreateDepartment(ctx, env.admin, "Finance")
	require.NoError(t, err)
	assert.NotZero(t, dept.ID)

	_, err = env.users.CreateDepartment(ctx, env.admin, "Finance")
	requireDomainError(t, err, http.StatusConflict, "CONFLICT")

	depts, err := env.users.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, depts, 3)

	_, err = env.users.GetDepartment(ctx, 404)
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")

	members, err := env.users.ListByDepartment(ctx, env.facilities)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "facilities1", members[0].Username)
}
