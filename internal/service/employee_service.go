package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// EmployeeService exposes the HR employee directory.
type EmployeeService struct {
	store repository.Store
}

// EmployeeInput is the payload for a new employee.
type EmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	HireDate   time.Time
	JobTitle   string
	Department string
	Salary     decimal.Decimal
}

// NewEmployeeService constructs the service.
func NewEmployeeService(store repository.Store) *EmployeeService {
	return &EmployeeService{store: store}
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.store.Employees().List(ctx)
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.store.Employees().GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		return nil, err
	}
	return emp, nil
}

// Create adds an employee with a unique email.
func (s *EmployeeService) Create(ctx context.Context, input EmployeeInput) (*domain.Employee, error) {
	if input.Salary.IsNegative() {
		return nil, apperrors.NewValidationError("salary must not be negative", nil)
	}
	emp := &domain.Employee{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		HireDate:   input.HireDate,
		JobTitle:   strings.TrimSpace(input.JobTitle),
		Department: strings.TrimSpace(input.Department),
		Salary:     input.Salary.Round(2),
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Employees().GetByEmail(ctx, emp.Email); err == nil {
			return apperrors.NewConflict("email already exists", map[string]any{"email": emp.Email})
		} else if !apperrors.IsNotFound(err) {
			return err
		}
		return tx.Employees().Create(ctx, emp)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.NewConflict("email already exists", map[string]any{"email": emp.Email})
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}
