package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RemarkRepository manages the append-only remark thread of a ticket.
type RemarkRepository interface {
	Create(ctx context.Context, remark *domain.Remark) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Remark, error)
}

type remarkRepository struct {
	db DBTX
}

// NewRemarkRepository builds repository.
func NewRemarkRepository(db DBTX) RemarkRepository {
	return &remarkRepository{db: db}
}

func (r *remarkRepository) Create(ctx context.Context, remark *domain.Remark) error {
	const query = `
        INSERT INTO remarks (ticket_id, user_id, comment)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		remark.TicketID,
		remark.AuthorID,
		remark.Comment,
	).Scan(&remark.ID, &remark.CreatedAt)
}

func (r *remarkRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Remark, error) {
	const query = `
        SELECT id, ticket_id, user_id, comment, created_at
        FROM remarks WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Remark{}
	for rows.Next() {
		var remark domain.Remark
		if err := rows.Scan(
			&remark.ID,
			&remark.TicketID,
			&remark.AuthorID,
			&remark.Comment,
			&remark.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, remark)
	}
	return result, rows.Err()
}
