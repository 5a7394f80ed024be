package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Self-registered accounts start as officers in the first department.
const (
	DefaultSignupRole         = domain.RoleOfficer
	DefaultSignupDepartmentID = int64(1)
)

// UserService manages accounts and departments.
type UserService struct {
	store      repository.Store
	audit      *AuditService
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store      repository.Store
	Audit      *AuditService
	Dispatcher events.Dispatcher
	BcryptCost int
	Logger     *zap.Logger
}

// CreateUserInput is the admin payload for a new account.
type CreateUserInput struct {
	Username     string
	Password     string
	FullName     string
	Email        string
	Role         domain.Role
	DepartmentID int64
}

// CreateAccountInput is the self-registration payload.
type CreateAccountInput struct {
	EmployeeID int64
	Username   string
	Password   string
	FullName   string
	Email      string
}

// ProfileInput carries editable profile fields.
type ProfileInput struct {
	FullName string
	Email    string
}

// PasswordChangeInput carries a password change request.
type PasswordChangeInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:      deps.Store,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateUser lets an admin create an account with any role.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"validRoles": domain.Roles})
	}
	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.TrimSpace(input.Email),
	}
	if err := s.register(ctx, actor, user, input.Password, nil); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAccount self-registers an account linked to an existing employee record.
func (s *UserService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.User, error) {
	employeeID := input.EmployeeID
	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		Role:         DefaultSignupRole,
		DepartmentID: DefaultSignupDepartmentID,
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.TrimSpace(input.Email),
		EmployeeID:   &employeeID,
	}
	check := func(tx repository.Store) error {
		emp, err := tx.Employees().GetByID(ctx, employeeID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("employee does not exist", map[string]any{"employeeId": employeeID})
			}
			return err
		}
		if _, err := tx.Users().GetByEmployeeID(ctx, employeeID); err == nil {
			return apperrors.NewConflict("employee already has an account", map[string]any{"employeeId": employeeID})
		} else if !apperrors.IsNotFound(err) {
			return err
		}
		if user.FullName == "" {
			user.FullName = strings.TrimSpace(emp.FirstName + " " + emp.LastName)
		}
		if user.Email == "" {
			user.Email = emp.Email
		}
		return nil
	}
	if err := s.register(ctx, domain.Actor{}, user, input.Password, check); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) register(ctx context.Context, actor domain.Actor, user *domain.User, password string, check func(repository.Store) error) error {
	if user.Username == "" {
		return apperrors.NewValidationError("username is required", nil)
	}
	if len(password) < auth.MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength), nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Departments().GetByID(ctx, user.DepartmentID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("department does not exist", map[string]any{"departmentId": user.DepartmentID})
			}
			return err
		}
		if _, err := tx.Users().GetByUsername(ctx, user.Username); err == nil {
			return apperrors.NewConflict("username already exists", map[string]any{"username": user.Username})
		} else if !apperrors.IsNotFound(err) {
			return err
		}
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventSignup,
		UserID:     user.ID,
		EntityType: domain.EntityUser,
		EntityID:   &user.ID,
		Details:    "User signed up",
	})
	if actor.ID == 0 {
		actor = user.Actor()
	}
	s.publishEvent(ctx, events.NewUserEvent(events.EventUserSignedUp, user.ID, actor, events.UserSignedUpPayload{
		Username:     user.Username,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		EmployeeID:   user.EmployeeID,
	}))
	return nil
}

// GetUser returns one account.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.Users().List(ctx)
}

// ListByDepartment returns accounts of one department.
func (s *UserService) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.User, error) {
	return s.store.Users().ListByDepartment(ctx, departmentID)
}

// UpdateProfile edits name and email. Users may edit themselves; admins anyone.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, id int64, input ProfileInput) (*domain.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("cannot edit another user's profile")
	}
	var before, after domain.User
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFound("user", map[string]any{"id": id})
			}
			return err
		}
		before = *user
		if name := strings.TrimSpace(input.FullName); name != "" {
			user.FullName = name
		}
		if email := strings.TrimSpace(input.Email); email != "" {
			user.Email = email
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		after = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventProfileUpdate,
		UserID:     actor.ID,
		EntityType: domain.EntityUser,
		EntityID:   &after.ID,
		Details:    "Profile updated",
		OldValues:  map[string]any{"fullName": before.FullName, "email": before.Email},
		NewValues:  map[string]any{"fullName": after.FullName, "email": after.Email},
	})
	return &after, nil
}

// ChangePassword replaces the caller's own password.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, id int64, input PasswordChangeInput) error {
	if actor.ID != id {
		return apperrors.NewForbidden("users may only change their own password")
	}
	if len(input.NewPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("new password must be at least %d characters", auth.MinPasswordLength), nil)
	}
	if input.NewPassword != input.ConfirmPassword {
		return apperrors.NewValidationError("new password and confirmation do not match", nil)
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFound("user", map[string]any{"id": id})
			}
			return err
		}
		if err := auth.ComparePassword(user.PasswordHash, input.CurrentPassword); err != nil {
			return apperrors.NewValidationError("current password is incorrect", nil)
		}
		hash, err := auth.HashPassword(input.NewPassword, s.bcryptCost)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventPasswordChange,
		UserID:     actor.ID,
		EntityType: domain.EntityUser,
		EntityID:   &id,
		Details:    "Password changed",
	})
	return nil
}

// ListDepartments returns every department.
func (s *UserService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.store.Departments().List(ctx)
}

// GetDepartment returns one department.
func (s *UserService) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.store.Departments().GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("department", map[string]any{"id": id})
		}
		return nil, err
	}
	return dept, nil
}

// CreateDepartment adds a department. Admin only.
func (s *UserService) CreateDepartment(ctx context.Context, actor domain.Actor, name string) (*domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	dept := &domain.Department{Name: name}
	if err := s.store.Departments().Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("department already exists", map[string]any{"name": name})
		}
		return nil, err
	}
	return dept, nil
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if meta, ok := observability.RequestMetaFromContext(ctx); ok {
		event.RequestID = meta.RequestID
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
