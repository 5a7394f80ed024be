package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// InitialRemark is attached to every new ticket.
const InitialRemark = "Ticket created"

// TicketService coordinates ticket workflows. Every mutation is gated by the
// policy evaluator before anything is persisted.
type TicketService struct {
	store      repository.Store
	audit      *AuditService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Audit      *AuditService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Severity    domain.TicketSeverity
}

// TicketUpdateInput replaces the editable fields. Empty title or description
// keep the current value; AssignedTo nil unassigns.
type TicketUpdateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
	Severity    domain.TicketSeverity
	AssignedTo  *int64
}

// TicketListFilter narrows listings within the caller's visibility.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Severities []domain.TicketSeverity
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketDetail is a ticket with its remark thread.
type TicketDetail struct {
	Ticket  domain.Ticket
	Remarks []domain.Remark
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:      deps.Store,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// CreateTicket creates a ticket in the actor's department with its initial remark.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	severity := input.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	if !severity.Valid() {
		return nil, invalidEnum("severity", severity)
	}

	decision := policy.Create(actor, domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Severity:    severity,
	})
	if decision.Denied() {
		return nil, s.deny(policy.ActionCreate, decision)
	}
	ticket := *decision.Ticket

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Tickets().Create(ctx, &ticket); err != nil {
			return err
		}
		return tx.Remarks().Create(ctx, &domain.Remark{TicketID: ticket.ID, AuthorID: actor.ID, Comment: InitialRemark})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventTicketCreated,
		UserID:     actor.ID,
		EntityType: domain.EntityTicket,
		EntityID:   &ticket.ID,
		Details:    fmt.Sprintf("Created ticket %q", ticket.Title),
		NewValues:  ticketSnapshot(ticket),
	})
	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		DepartmentID: ticket.DepartmentID,
		Severity:     ticket.Severity,
		Title:        ticket.Title,
	}))
	return &ticket, nil
}

// ListTickets returns every ticket for admins and the actor's department otherwise.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Severities: filter.Severities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !actor.IsAdmin() {
		dept := actor.DepartmentID
		repoFilter.DepartmentID = &dept
	}
	return s.tickets().List(ctx, repoFilter)
}

// ListAssigned returns tickets assigned to the actor.
func (s *TicketService) ListAssigned(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	id := actor.ID
	return s.tickets().List(ctx, repository.TicketFilter{
		AssignedTo: &id,
		Statuses:   filter.Statuses,
		Severities: filter.Severities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// GetTicket returns a visible ticket with its remarks.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID int64) (*TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if decision := policy.Read(actor, *ticket); decision.Denied() {
		return nil, s.deny(policy.ActionRead, decision)
	}
	remarks, err := s.store.Remarks().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: *ticket, Remarks: remarks}, nil
}

// UpdateTicket applies general edits. Changing the assignee to someone new is
// also gated as an assignment.
func (s *TicketService) UpdateTicket(ctx context.Context, actor domain.Actor, ticketID int64, input TicketUpdateInput) (*domain.Ticket, error) {
	if !input.Status.Valid() {
		return nil, invalidEnum("status", input.Status)
	}
	if !input.Severity.Valid() {
		return nil, invalidEnum("severity", input.Severity)
	}

	var before, after domain.Ticket
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		current, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		before = *current

		changes := policy.Changes{
			Title:       firstNonEmpty(strings.TrimSpace(input.Title), current.Title),
			Description: firstNonEmpty(strings.TrimSpace(input.Description), current.Description),
			Status:      input.Status,
			Severity:    input.Severity,
			AssignedTo:  input.AssignedTo,
		}
		decision := policy.Update(actor, *current, changes)
		if decision.Denied() {
			return s.deny(policy.ActionUpdate, decision)
		}
		next := *decision.Ticket

		if assigneeChanged(current.AssignedTo, input.AssignedTo) && input.AssignedTo != nil {
			assignee, err := s.loadAssignee(ctx, tx, *input.AssignedTo)
			if err != nil {
				return err
			}
			// Judge the assignment against both the stored and the proposed severity.
			for _, ticket := range []domain.Ticket{*current, next} {
				if assign := policy.Assign(actor, ticket, assignee); assign.Denied() {
					return s.deny(policy.ActionAssign, assign)
				}
			}
		}

		if err := tx.Tickets().Update(ctx, &next); err != nil {
			return err
		}
		after = next
		return tx.Remarks().Create(ctx, &domain.Remark{
			TicketID: next.ID,
			AuthorID: actor.ID,
			Comment:  updateRemark(next),
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventTicketUpdated,
		UserID:     actor.ID,
		EntityType: domain.EntityTicket,
		EntityID:   &after.ID,
		Details:    fmt.Sprintf("Updated ticket %d", after.ID),
		OldValues:  ticketSnapshot(before),
		NewValues:  ticketSnapshot(after),
	})
	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketUpdated, after.ID, actor, events.TicketUpdatedPayload{
		OldStatus:   before.Status,
		NewStatus:   after.Status,
		OldSeverity: before.Severity,
		NewSeverity: after.Severity,
		AssignedTo:  after.AssignedTo,
	}))
	return &after, nil
}

// AssignTicket sets the ticket owner.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Actor, ticketID, assigneeID int64) (*domain.Ticket, error) {
	var before, after domain.Ticket
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		current, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		before = *current
		assignee, err := s.loadAssignee(ctx, tx, assigneeID)
		if err != nil {
			return err
		}
		decision := policy.Assign(actor, *current, assignee)
		if decision.Denied() {
			return s.deny(policy.ActionAssign, decision)
		}
		next := *decision.Ticket
		if err := tx.Tickets().Update(ctx, &next); err != nil {
			return err
		}
		after = next
		return tx.Remarks().Create(ctx, &domain.Remark{
			TicketID: next.ID,
			AuthorID: actor.ID,
			Comment:  fmt.Sprintf("Ticket assigned to user %d", assigneeID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventTicketAssigned,
		UserID:     actor.ID,
		EntityType: domain.EntityTicket,
		EntityID:   &after.ID,
		Details:    fmt.Sprintf("Assigned ticket %d to user %d", after.ID, assigneeID),
		OldValues:  map[string]any{"assignedTo": before.AssignedTo},
		NewValues:  map[string]any{"assignedTo": after.AssignedTo},
	})
	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketAssigned, after.ID, actor, events.TicketAssignedPayload{
		PreviousAssignee: before.AssignedTo,
		AssigneeID:       assigneeID,
	}))
	return &after, nil
}

// ReassignTicket moves a ticket to another department and clears its owner.
func (s *TicketService) ReassignTicket(ctx context.Context, actor domain.Actor, ticketID, departmentID int64) (*domain.Ticket, error) {
	var before, after domain.Ticket
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		current, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		before = *current
		decision := policy.Reassign(actor, *current, departmentID)
		if decision.Denied() {
			return s.deny(policy.ActionReassign, decision)
		}
		dept, err := tx.Departments().GetByID(ctx, departmentID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("department does not exist", map[string]any{"departmentId": departmentID})
			}
			return err
		}
		next := *decision.Ticket
		if err := tx.Tickets().Update(ctx, &next); err != nil {
			return err
		}
		after = next
		return tx.Remarks().Create(ctx, &domain.Remark{
			TicketID: next.ID,
			AuthorID: actor.ID,
			Comment:  fmt.Sprintf("Ticket reassigned to department %s", dept.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventTicketReassigned,
		UserID:     actor.ID,
		EntityType: domain.EntityTicket,
		EntityID:   &after.ID,
		Details:    fmt.Sprintf("Reassigned ticket %d to department %d", after.ID, departmentID),
		OldValues:  map[string]any{"departmentId": before.DepartmentID, "assignedTo": before.AssignedTo},
		NewValues:  map[string]any{"departmentId": after.DepartmentID, "assignedTo": after.AssignedTo},
	})
	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketReassigned, after.ID, actor, events.TicketReassignedPayload{
		FromDepartmentID: before.DepartmentID,
		ToDepartmentID:   after.DepartmentID,
	}))
	return &after, nil
}

// ListRemarks returns the remark thread of a visible ticket.
func (s *TicketService) ListRemarks(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.Remark, error) {
	detail, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	return detail.Remarks, nil
}

// AddRemark appends a comment authored by the actor.
func (s *TicketService) AddRemark(ctx context.Context, actor domain.Actor, ticketID int64, comment string) (*domain.Remark, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required", nil)
	}
	ticket, err := s.loadTicket(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	decision := policy.Comment(actor, *ticket, domain.Remark{Comment: comment})
	if decision.Denied() {
		return nil, s.deny(policy.ActionComment, decision)
	}
	remark := *decision.Remark
	if err := s.store.Remarks().Create(ctx, &remark); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventRemarkAdded,
		UserID:     actor.ID,
		EntityType: domain.EntityTicket,
		EntityID:   &ticket.ID,
		Details:    fmt.Sprintf("Added remark to ticket %d", ticket.ID),
	})
	s.publishEvent(ctx, events.NewTicketEvent(events.EventRemarkAdded, ticket.ID, actor, events.RemarkAddedPayload{
		RemarkID:    remark.ID,
		AuthorID:    remark.AuthorID,
		BodyPreview: stringPreview(remark.Comment, 120),
	}))
	return &remark, nil
}

func (s *TicketService) tickets() repository.TicketRepository {
	return s.store.Tickets()
}

func (s *TicketService) loadTicket(ctx context.Context, store repository.Store, id int64) (*domain.Ticket, error) {
	ticket, err := store.Tickets().GetByID(ctx, id)
	return ticketOrNotFound(id, ticket, err)
}

// lockTicket reads the ticket inside a transaction and holds its row until commit.
func (s *TicketService) lockTicket(ctx context.Context, tx repository.Store, id int64) (*domain.Ticket, error) {
	ticket, err := tx.Tickets().GetByIDForUpdate(ctx, id)
	return ticketOrNotFound(id, ticket, err)
}

func ticketOrNotFound(id int64, ticket *domain.Ticket, err error) (*domain.Ticket, error) {
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) loadAssignee(ctx context.Context, store repository.Store, id int64) (domain.Actor, error) {
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domain.Actor{}, apperrors.NewValidationError("assignee does not exist", map[string]any{"assignedTo": id})
		}
		return domain.Actor{}, err
	}
	return user.Actor(), nil
}

// deny converts a refusal into the error returned to handlers.
func (s *TicketService) deny(action policy.Action, decision policy.Decision) error {
	s.metrics.RecordPolicyDenial(action.String(), string(decision.Reason))
	return apperrors.NewPolicyDenied(string(decision.Reason), denialStatus(decision.Reason), map[string]any{
		"action": action.String(),
	})
}

// denialStatus maps reasons caused by the request payload to 400 and the rest to 403.
func denialStatus(reason policy.Reason) int {
	switch reason {
	case policy.ReasonJuniorCritical, policy.ReasonAssigneeDepartment:
		return http.StatusBadRequest
	}
	return http.StatusForbidden
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if meta, ok := observability.RequestMetaFromContext(ctx); ok {
		event.RequestID = meta.RequestID
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func updateRemark(t domain.Ticket) string {
	assigned := ""
	if t.AssignedTo != nil {
		assigned = fmt.Sprintf("%d", *t.AssignedTo)
	}
	return fmt.Sprintf("Ticket updated: Status=%s, Severity=%s, AssignedTo=%s", t.Status, t.Severity, assigned)
}

func ticketSnapshot(t domain.Ticket) map[string]any {
	return map[string]any{
		"title":        t.Title,
		"description":  t.Description,
		"departmentId": t.DepartmentID,
		"severity":     t.Severity,
		"status":       t.Status,
		"assignedTo":   t.AssignedTo,
	}
}

func assigneeChanged(current, proposed *int64) bool {
	if current == nil || proposed == nil {
		return current != proposed
	}
	return *current != *proposed
}

func invalidEnum[T ~string](field string, value T) error {
	return apperrors.NewValidationError(fmt.Sprintf("invalid %s", field), map[string]any{field: string(value)})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// stringPreview shortens body to at most max runes.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
