package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Department and creator come from the token.
type CreateTicketRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description string                `json:"description" validate:"max=4000"`
	Severity    domain.TicketSeverity `json:"severity" validate:"omitempty,ticket_severity"`
}

// UpdateTicketRequest replaces the editable fields of a ticket.
type UpdateTicketRequest struct {
	Title       string                `json:"title" validate:"max=200"`
	Description string                `json:"description" validate:"max=4000"`
	Status      domain.TicketStatus   `json:"status" validate:"required,ticket_status"`
	Severity    domain.TicketSeverity `json:"severity" validate:"required,ticket_severity"`
	AssignedTo  *int64                `json:"assignedTo" validate:"omitempty,gt=0"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID int64 `json:"assigneeId" validate:"required,gt=0"`
}

// ReassignTicketRequest payload.
type ReassignTicketRequest struct {
	DepartmentID int64 `json:"departmentId" validate:"required,gt=0"`
}

// CreateRemarkRequest payload.
type CreateRemarkRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	DepartmentID int64                 `json:"departmentId"`
	Severity     domain.TicketSeverity `json:"severity"`
	Status       domain.TicketStatus   `json:"status"`
	AssignedTo   *int64                `json:"assignedTo"`
	CreatedBy    int64                 `json:"createdBy"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// RemarkResponse is the wire form of a remark.
type RemarkResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticketId"`
	UserID    int64     `json:"userId"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketDetailResponse is a ticket with its remark thread.
type TicketDetailResponse struct {
	TicketResponse
	Remarks []RemarkResponse `json:"remarks"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		DepartmentID: t.DepartmentID,
		Severity:     t.Severity,
		Status:       t.Status,
		AssignedTo:   t.AssignedTo,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewRemarkResponse maps a remark.
func NewRemarkResponse(r *domain.Remark) RemarkResponse {
	return RemarkResponse{
		ID:        r.ID,
		TicketID:  r.TicketID,
		UserID:    r.AuthorID,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// NewRemarkList maps a remark thread.
func NewRemarkList(remarks []domain.Remark) []RemarkResponse {
	items := make([]RemarkResponse, 0, len(remarks))
	for i := range remarks {
		items = append(items, NewRemarkResponse(&remarks[i]))
	}
	return items
}

// NewTicketDetailResponse maps a ticket and its remarks.
func NewTicketDetailResponse(t *domain.Ticket, remarks []domain.Remark) TicketDetailResponse {
	return TicketDetailResponse{
		TicketResponse: NewTicketResponse(t),
		Remarks:        NewRemarkList(remarks),
	}
}
