package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateEmployeeRequest payload. Salary accepts a JSON number or string.
type CreateEmployeeRequest struct {
	FirstName  string           `json:"firstName" validate:"required,max=100"`
	LastName   string           `json:"lastName" validate:"required,max=100"`
	Email      string           `json:"email" validate:"required,email"`
	Phone      string           `json:"phone" validate:"required,max=30"`
	HireDate   *time.Time       `json:"hireDate" validate:"required"`
	JobTitle   string           `json:"jobTitle" validate:"required,max=100"`
	Department string           `json:"department" validate:"required,max=100"`
	Salary     *decimal.Decimal `json:"salary" validate:"required"`
}

// EmployeeResponse is the wire form of an employee.
type EmployeeResponse struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	HireDate   time.Time       `json:"hireDate"`
	JobTitle   string          `json:"jobTitle"`
	Department string          `json:"department"`
	Salary     decimal.Decimal `json:"salary"`
}

// NewEmployeeResponse maps an employee.
func NewEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		HireDate:   e.HireDate,
		JobTitle:   e.JobTitle,
		Department: e.Department,
		Salary:     e.Salary,
	}
}

// NewEmployeeList maps employees.
func NewEmployeeList(emps []domain.Employee) []EmployeeResponse {
	items := make([]EmployeeResponse, 0, len(emps))
	for i := range emps {
		items = append(items, NewEmployeeResponse(&emps[i]))
	}
	return items
}

// EmployeeDirectoryEntry is the anonymous self-registration view of an employee.
type EmployeeDirectoryEntry struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// NewEmployeeDirectory maps employees to directory entries.
func NewEmployeeDirectory(emps []domain.Employee) []EmployeeDirectoryEntry {
	items := make([]EmployeeDirectoryEntry, 0, len(emps))
	for _, e := range emps {
		items = append(items, EmployeeDirectoryEntry{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName})
	}
	return items
}
