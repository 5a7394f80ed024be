package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// EmployeesHandler exposes the employee directory.
type EmployeesHandler struct {
	employees *service.EmployeeService
	validator *dto.Validator
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employeeService *service.EmployeeService, validator *dto.Validator) *EmployeesHandler {
	return &EmployeesHandler{employees: employeeService, validator: validator}
}

// List handles GET /api/employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	emps, err := h.employees.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewEmployeeList(emps)))
}

// Directory handles GET /api/users/employees for account self-registration.
func (h *EmployeesHandler) Directory(c *fiber.Ctx) error {
	emps, err := h.employees.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewEmployeeDirectory(emps)))
}

// Get handles GET /api/employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	emp, err := h.employees.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewEmployeeResponse(emp)))
}

// Create handles POST /api/employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	emp, err := h.employees.Create(c.UserContext(), service.EmployeeInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		HireDate:   *req.HireDate,
		JobTitle:   req.JobTitle,
		Department: req.Department,
		Salary:     *req.Salary,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewEmployeeResponse(emp)))
}
