package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketSeverity enumerates how urgent a ticket is.
type TicketSeverity string

const (
	SeverityLow      TicketSeverity = "Low"
	SeverityMedium   TicketSeverity = "Medium"
	SeverityHigh     TicketSeverity = "High"
	SeverityCritical TicketSeverity = "Critical"
)

// Valid reports whether s is a known severity.
func (s TicketSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	DepartmentID int64
	Severity     TicketSeverity
	Status       TicketStatus
	AssignedTo   *int64
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAssignedTo reports whether the ticket is currently owned by userID.
func (t *Ticket) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// Remark is an append-only comment or audit note attached to a ticket.
type Remark struct {
	ID        int64
	TicketID  int64
	AuthorID  int64
	Comment   string
	CreatedAt time.Time
}
