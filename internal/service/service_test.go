package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store    repository.Store
	audit    *AuditService
	tickets  *TicketService
	users    *UserService
	auth     *AuthService
	recorder *eventRecorder
	revoked  auth.RevocationList

	admin, supervisor, officer, junior domain.Actor
	// facilities is a second department with its own officer.
	facilities        int64
	facilitiesOfficer domain.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, repository.SeedDemo(ctx, store, auth.Hasher(bcrypt.MinCost)))

	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, et := range events.AllEventTypes {
		dispatcher.Subscribe(et, recorder.handle)
	}
	logger := zap.NewNop()
	audit := NewAuditService(store, logger)
	revoked := auth.NewMemoryRevocationList()

	env := &testEnv{
		store:    store,
		audit:    audit,
		recorder: recorder,
		revoked:  revoked,
		tickets: NewTicketService(TicketDependencies{
			Store:      store,
			Audit:      audit,
			Dispatcher: dispatcher,
			Metrics:    observability.NewMetrics(),
			Logger:     logger,
		}),
		users: NewUserService(UserDependencies{
			Store:      store,
			Audit:      audit,
			Dispatcher: dispatcher,
			BcryptCost: bcrypt.MinCost,
			Logger:     logger,
		}),
		auth: NewAuthService(AuthDependencies{
			Store:       store,
			Tokens:      auth.NewTokenManager("test-secret", "helpdesk-test", 15),
			Revocations: revoked,
			Audit:       audit,
			Logger:      logger,
		}),
	}
	env.admin = env.actor(t, "admin")
	env.supervisor = env.actor(t, "supervisor1")
	env.officer = env.actor(t, "officer1")
	env.junior = env.actor(t, "junior1")

	depts, err := store.Departments().List(ctx)
	require.NoError(t, err)
	env.facilities = depts[1].ID
	other, err := env.users.CreateUser(ctx, env.admin, CreateUserInput{
		Username:     "facilities1",
		Password:     "fac123",
		Role:         domain.RoleOfficer,
		DepartmentID: env.facilities,
	})
	require.NoError(t, err)
	env.facilitiesOfficer = other.Actor()
	return env
}

func (e *testEnv) actor(t *testing.T, username string) domain.Actor {
	t.Helper()
	user, err := e.store.Users().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return user.Actor()
}

func requireDomainError(t *testing.T, err error, status int, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, status, domainErr.HTTPStatus, domainErr.Error())
	require.Equal(t, code, domainErr.Code)
	return domainErr
}

func int64Ptr(v int64) *int64 { return &v }
