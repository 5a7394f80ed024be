package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	fail   bool
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestWorkerForwardsDispatchedEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	w := NewNotificationWorker(publisher, observability.NewMetrics(), zap.NewNop(), 8)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, w, zap.NewNop(), config.NotificationConfig{})

	StartNotificationWorker(context.Background(), notifications, w)

	actor := domain.Actor{ID: 1, Role: domain.RoleAdmin, DepartmentID: 1}
	require.NoError(t, dispatcher.Publish(context.Background(), events.NewTicketEvent(events.EventTicketCreated, 5, actor, nil)))
	require.NoError(t, dispatcher.Publish(context.Background(), events.NewUserEvent(events.EventUserSignedUp, 9, actor, nil)))
	w.Stop()

	require.Len(t, publisher.events, 2)
	assert.Equal(t, events.EventTicketCreated, publisher.events[0].Type)
	assert.Equal(t, int64(9), publisher.events[1].AggregateID)
}

func TestWorkerEnqueueReportsFullQueue(t *testing.T) {
	w := NewNotificationWorker(&recordingPublisher{}, nil, zap.NewNop(), 1)
	assert.True(t, w.Enqueue(events.Event{ID: "a"}))
	assert.False(t, w.Enqueue(events.Event{ID: "b"}))
}

func TestWorkerKeepsGoingAfterPublishError(t *testing.T) {
	publisher := &recordingPublisher{fail: true}
	w := NewNotificationWorker(publisher, observability.NewMetrics(), zap.NewNop(), 4)
	go w.Run(context.Background())
	assert.True(t, w.Enqueue(events.Event{ID: "a", Type: events.EventRemarkAdded}))
	assert.True(t, w.Enqueue(events.Event{ID: "b", Type: events.EventRemarkAdded}))
	w.Stop()
	assert.Empty(t, publisher.events)
}
