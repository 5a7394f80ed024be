package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// UsersHandler exposes account and department endpoints.
type UsersHandler struct {
	users     *service.UserService
	validator *dto.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, validator *dto.Validator) *UsersHandler {
	return &UsersHandler{users: userService, validator: validator}
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), principal.Actor, service.CreateUserInput{
		Username:     req.Username,
		Password:     req.Password,
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewUserResponse(user)))
}

// CreateAccount handles POST /api/users/create-account.
func (h *UsersHandler) CreateAccount(c *fiber.Ctx) error {
	var req dto.CreateAccountRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.users.CreateAccount(c.UserContext(), service.CreateAccountInput{
		EmployeeID: req.EmployeeID,
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Email:      req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewUserResponse(user)))
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserList(users)))
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// ListByDepartment handles GET /api/users/department/:departmentId.
func (h *UsersHandler) ListByDepartment(c *fiber.Ctx) error {
	id, err := paramID(c, "departmentId")
	if err != nil {
		return err
	}
	users, err := h.users.ListByDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserList(users)))
}

// UpdateProfile handles PUT /api/users/:id.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), principal.Actor, id, service.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// ChangePassword handles POST /api/users/:id/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	err = h.users.ChangePassword(c.UserContext(), principal.Actor, id, service.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListDepartments handles GET /api/departments.
func (h *UsersHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.users.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewDepartmentList(depts)))
}

// GetDepartment handles GET /api/departments/:id.
func (h *UsersHandler) GetDepartment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.users.GetDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.DepartmentResponse{ID: dept.ID, Name: dept.Name}))
}

// CreateDepartment handles POST /api/departments.
func (h *UsersHandler) CreateDepartment(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateDepartmentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	dept, err := h.users.CreateDepartment(c.UserContext(), principal.Actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.DepartmentResponse{ID: dept.ID, Name: dept.Name}))
}
