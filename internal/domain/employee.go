package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is an HR record; accounts may be self-registered against one.
type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	HireDate   time.Time
	JobTitle   string
	Department string
	Salary     decimal.Decimal
}
