package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketUpdated    EventType = "ticket_updated"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventTicketReassigned EventType = "ticket_reassigned"
	EventRemarkAdded      EventType = "remark_added"
	EventUserSignedUp     EventType = "user_signed_up"
)

// AllEventTypes lists every event the services emit.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketAssigned,
	EventTicketReassigned,
	EventRemarkAdded,
	EventUserSignedUp,
}

// Aggregates.
const (
	AggregateTicket = "ticket"
	AggregateUser   = "user"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID           int64       `json:"id"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"department_id"`
}

// ActorFrom copies the policy identity into event form.
func ActorFrom(a domain.Actor) Actor {
	return Actor{ID: a.ID, Role: a.Role, DepartmentID: a.DepartmentID}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Aggregate   string    `json:"aggregate"`
	AggregateID int64     `json:"aggregate_id"`
	Actor       Actor     `json:"actor"`
	RequestID   string    `json:"request_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// NewTicketEvent stamps an event about a ticket.
func NewTicketEvent(eventType EventType, ticketID int64, actor domain.Actor, payload any) Event {
	return newEvent(eventType, AggregateTicket, ticketID, actor, payload)
}

// NewUserEvent stamps an event about a user account.
func NewUserEvent(eventType EventType, userID int64, actor domain.Actor, payload any) Event {
	return newEvent(eventType, AggregateUser, userID, actor, payload)
}

func newEvent(eventType EventType, aggregate string, id int64, actor domain.Actor, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		Aggregate:   aggregate,
		AggregateID: id,
		Actor:       ActorFrom(actor),
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DepartmentID int64                 `json:"department_id"`
	Severity     domain.TicketSeverity `json:"severity"`
	Title        string                `json:"title"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus   domain.TicketStatus   `json:"old_status"`
	NewStatus   domain.TicketStatus   `json:"new_status"`
	OldSeverity domain.TicketSeverity `json:"old_severity"`
	NewSeverity domain.TicketSeverity `json:"new_severity"`
	AssignedTo  *int64                `json:"assigned_to,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssignee *int64 `json:"previous_assignee,omitempty"`
	AssigneeID       int64  `json:"assignee_id"`
}

// TicketReassignedPayload payload.
type TicketReassignedPayload struct {
	FromDepartmentID int64 `json:"from_department_id"`
	ToDepartmentID   int64 `json:"to_department_id"`
}

// RemarkAddedPayload payload.
type RemarkAddedPayload struct {
	RemarkID    int64  `json:"remark_id"`
	AuthorID    int64  `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Username     string      `json:"username"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"department_id"`
	EmployeeID   *int64      `json:"employee_id,omitempty"`
}
