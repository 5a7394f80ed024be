package domain

import "time"

// Role enumerates helpdesk user roles.
type Role string

const (
	RoleAdmin         Role = "Admin"
	RoleSupervisor    Role = "Supervisor"
	RoleOfficer       Role = "Officer"
	RoleJuniorOfficer Role = "JuniorOfficer"
)

// Roles lists every valid role in descending privilege order.
var Roles = []Role{RoleAdmin, RoleSupervisor, RoleOfficer, RoleJuniorOfficer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOfficer, RoleJuniorOfficer:
		return true
	}
	return false
}

// User is an account that can sign in to the helpdesk.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	DepartmentID int64
	FullName     string
	Email        string
	EmployeeID   *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the request identity derived from the user record.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID           int64
	Role         Role
	DepartmentID int64
}

// IsAdmin reports whether the actor holds the Admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SameDepartment reports whether the actor belongs to departmentID.
func (a Actor) SameDepartment(departmentID int64) bool {
	return a.DepartmentID == departmentID
}
