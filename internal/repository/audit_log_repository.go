package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditLogFilter narrows audit log queries. Zero values are ignored.
type AuditLogFilter struct {
	EventType  *domain.AuditEventType
	UserID     *int64
	EntityType *string
	EntityID   *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Username   *string
	Limit      int
}

// AuditLogRepository stores audit entries.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	GetByID(ctx context.Context, id int64) (*domain.AuditLog, error)
	List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error)
}

type auditLogRepository struct {
	db DBTX
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(db DBTX) AuditLogRepository {
	return &auditLogRepository{db: db}
}

const auditLogSelect = `
        SELECT a.id, a.event_type, a.timestamp, a.user_id, a.entity_type, a.entity_id,
               a.details, a.old_values, a.new_values, a.ip_address,
               COALESCE(u.username, ''), COALESCE(u.role, '')
        FROM audit_logs a
        LEFT JOIN users u ON u.id = a.user_id`

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (event_type, user_id, entity_type, entity_id, details, old_values, new_values, ip_address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, timestamp`
	return r.db.QueryRow(ctx, query,
		entry.EventType,
		entry.UserID,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
		entry.OldValues,
		entry.NewValues,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *auditLogRepository) GetByID(ctx context.Context, id int64) (*domain.AuditLog, error) {
	var entry domain.AuditLog
	if err := scanAuditLog(r.db.QueryRow(ctx, auditLogSelect+` WHERE a.id=$1`, id), &entry); err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error) {
	clauses := []string{"1=1"}
	args := []any{}
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.EventType != nil {
		add("a.event_type=$%d", *filter.EventType)
	}
	if filter.UserID != nil {
		add("a.user_id=$%d", *filter.UserID)
	}
	if filter.EntityType != nil {
		add("a.entity_type=$%d", *filter.EntityType)
	}
	if filter.EntityID != nil {
		add("a.entity_id=$%d", *filter.EntityID)
	}
	if filter.StartDate != nil {
		add("a.timestamp>=$%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("a.timestamp<=$%d", *filter.EndDate)
	}
	if filter.Username != nil && strings.TrimSpace(*filter.Username) != "" {
		add("LOWER(u.username) LIKE $%d", "%"+strings.ToLower(strings.TrimSpace(*filter.Username))+"%")
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY a.timestamp DESC, a.id DESC", auditLogSelect, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AuditLog{}
	for rows.Next() {
		var entry domain.AuditLog
		if err := scanAuditLog(rows, &entry); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanAuditLog(row pgx.Row, entry *domain.AuditLog) error {
	return row.Scan(
		&entry.ID,
		&entry.EventType,
		&entry.Timestamp,
		&entry.UserID,
		&entry.EntityType,
		&entry.EntityID,
		&entry.Details,
		&entry.OldValues,
		&entry.NewValues,
		&entry.IPAddress,
		&entry.Username,
		&entry.UserRole,
	)
}
