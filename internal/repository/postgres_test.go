package repository

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresStore(mock)
}

func TestPostgresTicketCreate(t *testing.T) {
	mock, store := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tickets")).
		WithArgs("Disk full", "db01", int64(2), domain.SeverityHigh, domain.TicketStatusOpen, (*int64)(nil), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	ticket := domain.Ticket{
		Title:        "Disk full",
		Description:  "db01",
		DepartmentID: 2,
		Severity:     domain.SeverityHigh,
		Status:       domain.TicketStatusOpen,
		CreatedBy:    9,
	}
	require.NoError(t, store.Tickets().Create(context.Background(), &ticket))
	assert.Equal(t, int64(11), ticket.ID)
	assert.Equal(t, now, ticket.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserUpdateMissing(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(77)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.Users().Update(context.Background(), &domain.User{ID: 77, Role: domain.RoleOfficer})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserCreateDuplicate(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := store.Users().Create(context.Background(), &domain.User{Username: "admin", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRemarkList(t *testing.T) {
	mock, store := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM remarks WHERE ticket_id=$1")).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "ticket_id", "user_id", "comment", "created_at"}).
			AddRow(int64(1), int64(4), int64(2), "Ticket created", now).
			AddRow(int64(2), int64(4), int64(3), "On it", now))

	remarks, err := store.Remarks().ListByTicket(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, remarks, 2)
	assert.Equal(t, "On it", remarks[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var ticketRowColumns = []string{"id", "title", "description", "department_id", "severity", "status", "assigned_to", "created_by", "created_at", "updated_at"}

func TestPostgresTicketLockForUpdate(t *testing.T) {
	mock, store := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id=$1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(ticketRowColumns).
			AddRow(int64(7), "Printer", "jammed", int64(1), domain.SeverityLow, domain.TicketStatusOpen, (*int64)(nil), int64(3), now, now))

	ticket, err := store.Tickets().GetByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Printer", ticket.Title)
	assert.Nil(t, ticket.AssignedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInTxCommitsTicketAndRemark(t *testing.T) {
	mock, store := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tickets SET")).
		WithArgs("Printer", "jammed", int64(1), domain.SeverityHigh, domain.TicketStatusInProgress, pgxmock.AnyArg(), int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO remarks")).
		WithArgs(int64(7), int64(3), "Ticket updated").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(21), now))
	mock.ExpectCommit()

	remark := domain.Remark{TicketID: 7, AuthorID: 3, Comment: "Ticket updated"}
	err := store.InTx(context.Background(), func(tx Store) error {
		ticket := domain.Ticket{
			ID:           7,
			Title:        "Printer",
			Description:  "jammed",
			DepartmentID: 1,
			Severity:     domain.SeverityHigh,
			Status:       domain.TicketStatusInProgress,
		}
		if err := tx.Tickets().Update(context.Background(), &ticket); err != nil {
			return err
		}
		return tx.Remarks().Create(context.Background(), &remark)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), remark.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInTxRollsBackOnDenial(t *testing.T) {
	mock, store := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(ticketRowColumns).
			AddRow(int64(7), "Outage", "core", int64(1), domain.SeverityCritical, domain.TicketStatusOpen, (*int64)(nil), int64(2), now, now))
	mock.ExpectRollback()

	denied := apperrors.NewPolicyDenied("insufficient role", http.StatusForbidden, nil)
	err := store.InTx(context.Background(), func(tx Store) error {
		ticket, err := tx.Tickets().GetByIDForUpdate(context.Background(), 7)
		if err != nil {
			return err
		}
		if ticket.Severity == domain.SeverityCritical {
			return denied
		}
		return tx.Tickets().Update(context.Background(), ticket)
	})
	assert.ErrorIs(t, err, denied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
