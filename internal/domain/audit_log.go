package domain

import "time"

// AuditEventType names what happened in an audit entry.
type AuditEventType string

const (
	AuditEventLogin            AuditEventType = "Login"
	AuditEventSignup           AuditEventType = "Signup"
	AuditEventTicketCreated    AuditEventType = "TicketCreated"
	AuditEventTicketUpdated    AuditEventType = "TicketUpdated"
	AuditEventTicketAssigned   AuditEventType = "TicketAssigned"
	AuditEventTicketReassigned AuditEventType = "TicketReassigned"
	AuditEventRemarkAdded      AuditEventType = "RemarkAdded"
	AuditEventProfileUpdate    AuditEventType = "ProfileUpdate"
	AuditEventPasswordChange   AuditEventType = "PasswordChange"
)

// Audit entity types.
const (
	EntityTicket = "Ticket"
	EntityUser   = "User"
)

// AuditLog is an immutable record of a user action.
type AuditLog struct {
	ID         int64
	EventType  AuditEventType
	Timestamp  time.Time
	UserID     int64
	EntityType *string
	EntityID   *int64
	Details    string
	OldValues  *string
	NewValues  *string
	IPAddress  *string

	// Populated on reads from the owning user.
	Username string
	UserRole Role
}
