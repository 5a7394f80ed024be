package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DemoAccount describes a seeded login.
type DemoAccount struct {
	Username string
	Password string
	Role     domain.Role
	FullName string
}

// DemoAccounts are created by SeedDemo in the first department.
var DemoAccounts = []DemoAccount{
	{Username: "admin", Password: "admin123", Role: domain.RoleAdmin, FullName: "System Administrator"},
	{Username: "supervisor1", Password: "sup123", Role: domain.RoleSupervisor, FullName: "Support Supervisor"},
	{Username: "officer1", Password: "off123", Role: domain.RoleOfficer, FullName: "Support Officer"},
	{Username: "junior1", Password: "jun123", Role: domain.RoleJuniorOfficer, FullName: "Junior Officer"},
}

var demoDepartments = []string{"IT Support", "Facilities"}

var demoEmployees = [][2]string{
	{"Jane", "Doe"}, {"John", "Smith"}, {"Maria", "Garcia"}, {"Wei", "Chen"}, {"Amir", "Khan"},
	{"Olga", "Ivanova"}, {"Kofi", "Mensah"}, {"Sara", "Lind"}, {"Luca", "Rossi"}, {"Yuki", "Tanaka"},
}

// SeedDemo populates departments, demo accounts and unlinked employees.
// Records that already exist are left untouched.
func SeedDemo(ctx context.Context, store Store, hash func(string) (string, error)) error {
	return store.InTx(ctx, func(tx Store) error {
		depts, err := tx.Departments().List(ctx)
		if err != nil {
			return err
		}
		if len(depts) == 0 {
			for _, name := range demoDepartments {
				dept := domain.Department{Name: name}
				if err := tx.Departments().Create(ctx, &dept); err != nil {
					return fmt.Errorf("seed department %s: %w", name, err)
				}
				depts = append(depts, dept)
			}
		}
		home := depts[0].ID

		for _, account := range DemoAccounts {
			_, err := tx.Users().GetByUsername(ctx, account.Username)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			passwordHash, err := hash(account.Password)
			if err != nil {
				return err
			}
			user := domain.User{
				Username:     account.Username,
				PasswordHash: passwordHash,
				Role:         account.Role,
				DepartmentID: home,
				FullName:     account.FullName,
				Email:        account.Username + "@helpdesk.local",
			}
			if err := tx.Users().Create(ctx, &user); err != nil {
				return fmt.Errorf("seed user %s: %w", account.Username, err)
			}
		}

		employees, err := tx.Employees().List(ctx)
		if err != nil {
			return err
		}
		if len(employees) > 0 {
			return nil
		}
		for i, name := range demoEmployees {
			emp := domain.Employee{
				FirstName:  name[0],
				LastName:   name[1],
				Email:      strings.ToLower(name[0]+"."+name[1]) + "@helpdesk.local",
				Phone:      fmt.Sprintf("555-01%02d", i),
				HireDate:   time.Date(2020+i%4, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC),
				JobTitle:   "Support Analyst",
				Department: demoDepartments[i%len(demoDepartments)],
				Salary:     decimal.NewFromInt(int64(48000 + i*1500)),
			}
			if err := tx.Employees().Create(ctx, &emp); err != nil {
				return fmt.Errorf("seed employee %s: %w", emp.Email, err)
			}
		}
		return nil
	})
}
