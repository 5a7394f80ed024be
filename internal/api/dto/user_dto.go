package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the identity it encodes.
type LoginResponse struct {
	Token        string      `json:"token"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	UserID       int64       `json:"userId"`
	Username     string      `json:"username"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"departmentId"`
}

// CreateUserRequest is the admin payload for a new account.
type CreateUserRequest struct {
	Username     string      `json:"username" validate:"required,max=100"`
	Password     string      `json:"password" validate:"required,min=6"`
	FullName     string      `json:"fullName" validate:"max=200"`
	Email        string      `json:"email" validate:"omitempty,email"`
	Role         domain.Role `json:"role" validate:"required,role"`
	DepartmentID int64       `json:"departmentId" validate:"required,gt=0"`
}

// CreateAccountRequest is the self-registration payload.
type CreateAccountRequest struct {
	EmployeeID int64  `json:"employeeId" validate:"required,gt=0"`
	Username   string `json:"username" validate:"required,max=100"`
	Password   string `json:"password" validate:"required,min=6"`
	FullName   string `json:"fullName" validate:"max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	FullName string `json:"fullName" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"departmentId"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	EmployeeID   *int64      `json:"employeeId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// DepartmentResponse is the wire form of a department.
type DepartmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewLoginResponse maps a session.
func NewLoginResponse(s *domain.Session) LoginResponse {
	return LoginResponse{
		Token:        s.Token,
		ExpiresAt:    s.ExpiresAt,
		UserID:       s.User.ID,
		Username:     s.User.Username,
		Role:         s.User.Role,
		DepartmentID: s.User.DepartmentID,
	}
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		FullName:     u.FullName,
		Email:        u.Email,
		EmployeeID:   u.EmployeeID,
		CreatedAt:    u.CreatedAt,
	}
}

// NewUserList maps users.
func NewUserList(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}
	return items
}

// NewDepartmentList maps departments.
func NewDepartmentList(depts []domain.Department) []DepartmentResponse {
	items := make([]DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		items = append(items, DepartmentResponse{ID: d.ID, Name: d.Name})
	}
	return items
}
