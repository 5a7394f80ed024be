package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Sentinel errors shared by every Store implementation.
var (
	ErrNotFound  = apperrors.ErrNotFound
	ErrDuplicate = apperrors.ErrDuplicate
)

const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is a DBTX that can open transactions.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories behind one transactional boundary.
type Store interface {
	Tickets() TicketRepository
	Remarks() RemarkRepository
	Users() UserRepository
	Departments() DepartmentRepository
	Employees() EmployeeRepository
	AuditLogs() AuditLogRepository

	// InTx runs fn against a store whose writes commit together.
	InTx(ctx context.Context, fn func(Store) error) error
}

type postgresStore struct {
	pool TxBeginner
	db   DBTX
	inTx bool
}

// NewPostgresStore returns a Store backed by pgx.
func NewPostgresStore(pool TxBeginner) Store {
	return &postgresStore{pool: pool, db: pool}
}

func (s *postgresStore) Tickets() TicketRepository         { return NewTicketRepository(s.db) }
func (s *postgresStore) Remarks() RemarkRepository         { return NewRemarkRepository(s.db) }
func (s *postgresStore) Users() UserRepository             { return NewUserRepository(s.db) }
func (s *postgresStore) Departments() DepartmentRepository { return NewDepartmentRepository(s.db) }
func (s *postgresStore) Employees() EmployeeRepository     { return NewEmployeeRepository(s.db) }
func (s *postgresStore) AuditLogs() AuditLogRepository     { return NewAuditLogRepository(s.db) }

func (s *postgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&postgresStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
