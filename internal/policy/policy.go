// Package policy decides which ticket actions an actor may perform.
//
// Every function here is pure: no I/O, no shared state. Callers load the actor and ticket,
// evaluate, and only then persist the normalized values carried by an allowed Decision.
package policy

import (
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Action identifies the ticket operation being authorized.
type Action int

const (
	ActionCreate Action = iota + 1
	ActionRead
	ActionUpdate
	ActionAssign
	ActionReassign
	ActionComment
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionAssign:
		return "assign"
	case ActionReassign:
		return "reassign"
	case ActionComment:
		return "comment"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Reason explains a denial. The set is fixed.
type Reason string

const (
	ReasonCrossDepartment    Reason = "cross-department access"
	ReasonJuniorCritical     Reason = "Junior officers cannot work on Critical tickets unless specifically assigned"
	ReasonAssigneeDepartment Reason = "assignee department mismatch"
	ReasonInsufficientRole   Reason = "insufficient role"
	ReasonUnknownAction      Reason = "unknown action"
)

// Decision is the outcome of an evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason

	// Ticket is the ticket state to persist when Allowed (Create, Update, Assign, Reassign).
	Ticket *domain.Ticket
	// Remark is the remark to persist when Allowed (Comment).
	Remark *domain.Remark
}

// Denied reports whether the decision refuses the action.
func (d Decision) Denied() bool {
	return !d.Allowed
}

func allow() Decision {
	return Decision{Allowed: true}
}

func allowTicket(t domain.Ticket) Decision {
	return Decision{Allowed: true, Ticket: &t}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Changes carries the proposed field values for Update, Assign and Reassign.
type Changes struct {
	Title        string
	Description  string
	Status       domain.TicketStatus
	Severity     domain.TicketSeverity
	AssignedTo   *int64
	DepartmentID int64
	// Assignee identifies the target user for Assign.
	Assignee *domain.Actor
}

// Request bundles the input of Evaluate.
type Request struct {
	Action  Action
	Ticket  domain.Ticket
	Changes Changes
	Remark  domain.Remark
}

// Evaluate dispatches req to the rule for its action.
func Evaluate(actor domain.Actor, req Request) Decision {
	switch req.Action {
	case ActionCreate:
		return Create(actor, req.Ticket)
	case ActionRead:
		return Read(actor, req.Ticket)
	case ActionUpdate:
		return Update(actor, req.Ticket, req.Changes)
	case ActionAssign:
		if req.Changes.Assignee == nil {
			return deny(ReasonAssigneeDepartment)
		}
		return Assign(actor, req.Ticket, *req.Changes.Assignee)
	case ActionReassign:
		return Reassign(actor, req.Ticket, req.Changes.DepartmentID)
	case ActionComment:
		return Comment(actor, req.Ticket, req.Remark)
	}
	return deny(ReasonUnknownAction)
}

// Read allows admins and members of the ticket's department.
func Read(actor domain.Actor, ticket domain.Ticket) Decision {
	if actor.IsAdmin() || actor.SameDepartment(ticket.DepartmentID) {
		return allow()
	}
	return deny(ReasonCrossDepartment)
}

// Create always allows and pins the draft to the actor's identity.
func Create(actor domain.Actor, draft domain.Ticket) Decision {
	draft.DepartmentID = actor.DepartmentID
	draft.CreatedBy = actor.ID
	draft.Status = domain.TicketStatusOpen
	return allowTicket(draft)
}

// Update gates general field edits.
func Update(actor domain.Actor, current domain.Ticket, changes Changes) Decision {
	if !actor.IsAdmin() && !actor.SameDepartment(current.DepartmentID) {
		return deny(ReasonCrossDepartment)
	}
	if actor.Role == domain.RoleJuniorOfficer && changes.Severity == domain.SeverityCritical {
		owned := current.IsAssignedTo(actor.ID) && current.Severity == domain.SeverityCritical
		if !owned {
			return deny(ReasonJuniorCritical)
		}
	}

	next := current
	next.Title = changes.Title
	next.Description = changes.Description
	next.Status = changes.Status
	next.Severity = changes.Severity
	next.AssignedTo = copyID(changes.AssignedTo)
	return allowTicket(next)
}

// Assign gates setting the ticket owner. The assignee department check applies to every
// role, Admin included.
func Assign(actor domain.Actor, ticket domain.Ticket, assignee domain.Actor) Decision {
	if assignee.DepartmentID != ticket.DepartmentID {
		return deny(ReasonAssigneeDepartment)
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleSupervisor:
		if !actor.SameDepartment(ticket.DepartmentID) {
			return deny(ReasonCrossDepartment)
		}
	case domain.RoleOfficer:
		if !actor.SameDepartment(ticket.DepartmentID) {
			return deny(ReasonCrossDepartment)
		}
		if ticket.Severity == domain.SeverityCritical {
			return deny(ReasonInsufficientRole)
		}
	default:
		return deny(ReasonInsufficientRole)
	}

	next := ticket
	id := assignee.ID
	next.AssignedTo = &id
	return allowTicket(next)
}

// Reassign gates moving a ticket to another department. Success clears the assignee.
func Reassign(actor domain.Actor, ticket domain.Ticket, departmentID int64) Decision {
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleSupervisor:
		if !actor.SameDepartment(ticket.DepartmentID) {
			return deny(ReasonCrossDepartment)
		}
	default:
		return deny(ReasonInsufficientRole)
	}

	next := ticket
	next.DepartmentID = departmentID
	next.AssignedTo = nil
	return allowTicket(next)
}

// Comment follows Read and stamps the remark with the actor as author.
func Comment(actor domain.Actor, ticket domain.Ticket, remark domain.Remark) Decision {
	if d := Read(actor, ticket); d.Denied() {
		return d
	}
	remark.TicketID = ticket.ID
	remark.AuthorID = actor.ID
	return Decision{Allowed: true, Remark: &remark}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
