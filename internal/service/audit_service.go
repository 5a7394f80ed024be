package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DefaultRecentAuditCount is used when /recent has no count.
const DefaultRecentAuditCount = 50

// AuditService records and queries the audit trail.
type AuditService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewAuditService builds the service.
func NewAuditService(store repository.Store, logger *zap.Logger) *AuditService {
	return &AuditService{store: store, logger: logger}
}

// AuditEntry is the input of Record. OldValues and NewValues are marshalled to JSON.
type AuditEntry struct {
	EventType  domain.AuditEventType
	UserID     int64
	EntityType string
	EntityID   *int64
	Details    string
	OldValues  any
	NewValues  any
}

// Record appends an entry. Failures are logged, never returned.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if s == nil {
		return
	}
	log := &domain.AuditLog{
		EventType: entry.EventType,
		UserID:    entry.UserID,
		EntityID:  entry.EntityID,
		Details:   entry.Details,
		OldValues: s.marshal(entry.OldValues),
		NewValues: s.marshal(entry.NewValues),
		IPAddress: clientIP(ctx),
	}
	if entry.EntityType != "" {
		entityType := entry.EntityType
		log.EntityType = &entityType
	}
	if err := s.store.AuditLogs().Create(ctx, log); err != nil {
		s.logger.Error("audit record failed",
			zap.String("event_type", string(entry.EventType)),
			zap.Int64("user_id", entry.UserID),
			zap.Error(err))
	}
}

// Create stores a client-submitted entry for the calling user.
func (s *AuditService) Create(ctx context.Context, actor domain.Actor, log domain.AuditLog) (*domain.AuditLog, error) {
	if strings.TrimSpace(string(log.EventType)) == "" {
		return nil, apperrors.NewValidationError("eventType is required", nil)
	}
	log.ID = 0
	log.UserID = actor.ID
	if log.IPAddress == nil {
		log.IPAddress = clientIP(ctx)
	}
	if err := s.store.AuditLogs().Create(ctx, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// Get returns one entry.
func (s *AuditService) Get(ctx context.Context, id int64) (*domain.AuditLog, error) {
	log, err := s.store.AuditLogs().GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("audit log", map[string]any{"id": id})
		}
		return nil, err
	}
	return log, nil
}

// List returns entries matching filter, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditLogFilter) ([]domain.AuditLog, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, apperrors.NewValidationError("endDate must not precede startDate", nil)
	}
	return s.store.AuditLogs().List(ctx, filter)
}

// ListByUser returns every entry for userID, or not-found when there are none.
func (s *AuditService) ListByUser(ctx context.Context, userID int64) ([]domain.AuditLog, error) {
	logs, err := s.store.AuditLogs().List(ctx, repository.AuditLogFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, apperrors.NewNotFound("audit logs", map[string]any{"userId": userID})
	}
	return logs, nil
}

// Recent returns the newest count entries.
func (s *AuditService) Recent(ctx context.Context, count int) ([]domain.AuditLog, error) {
	if count <= 0 {
		count = DefaultRecentAuditCount
	}
	return s.store.AuditLogs().List(ctx, repository.AuditLogFilter{Limit: count})
}

func (s *AuditService) marshal(v any) *string {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("audit values not serializable", zap.Error(err))
		return nil
	}
	out := string(raw)
	return &out
}

func clientIP(ctx context.Context) *string {
	meta, ok := observability.RequestMetaFromContext(ctx)
	if !ok || meta.ClientIP == "" {
		return nil
	}
	ip := meta.ClientIP
	return &ip
}
