package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateAuditLogRequest is a client-submitted audit entry.
type CreateAuditLogRequest struct {
	EventType  string  `json:"eventType" validate:"required,max=50"`
	EntityType *string `json:"entityType" validate:"omitempty,max=50"`
	EntityID   *int64  `json:"entityId"`
	Details    string  `json:"details" validate:"max=1000"`
	OldValues  *string `json:"oldValues"`
	NewValues  *string `json:"newValues"`
}

// AuditLogResponse is the wire form of an audit entry.
type AuditLogResponse struct {
	ID         int64     `json:"id"`
	EventType  string    `json:"eventType"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	UserRole   string    `json:"userRole"`
	EntityType *string   `json:"entityType"`
	EntityID   *int64    `json:"entityId"`
	Details    string    `json:"details"`
	OldValues  *string   `json:"oldValues"`
	NewValues  *string   `json:"newValues"`
	IPAddress  *string   `json:"ipAddress"`
}

// ToDomain converts the request into an entry; the user is set by the service.
func (r CreateAuditLogRequest) ToDomain() domain.AuditLog {
	return domain.AuditLog{
		EventType:  domain.AuditEventType(r.EventType),
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Details:    r.Details,
		OldValues:  r.OldValues,
		NewValues:  r.NewValues,
	}
}

// NewAuditLogResponse maps an audit entry.
func NewAuditLogResponse(l *domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         l.ID,
		EventType:  string(l.EventType),
		Timestamp:  l.Timestamp,
		UserID:     l.UserID,
		Username:   l.Username,
		UserRole:   string(l.UserRole),
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Details:    l.Details,
		OldValues:  l.OldValues,
		NewValues:  l.NewValues,
		IPAddress:  l.IPAddress,
	}
}

// NewAuditLogList maps entries.
func NewAuditLogList(logs []domain.AuditLog) []AuditLogResponse {
	items := make([]AuditLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, NewAuditLogResponse(&logs[i]))
	}
	return items
}
