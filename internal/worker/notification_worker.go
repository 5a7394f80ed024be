package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker forwards queued events to a broker publisher.
type NotificationWorker struct {
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	queue     chan events.Event
	once      sync.Once
	done      chan struct{}
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(publisher events.Publisher, metrics *observability.Metrics, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		queue:     make(chan events.Event, queueSize),
		done:      make(chan struct{}),
	}
}

// Enqueue accepts an event without blocking. It reports false when the queue is full.
func (w *NotificationWorker) Enqueue(event events.Event) bool {
	select {
	case w.queue <- event:
		return true
	default:
		return false
	}
}

// Run publishes queued events until Stop is called, then drains what is left.
func (w *NotificationWorker) Run(ctx context.Context) {
	defer close(w.done)
	for event := range w.queue {
		err := w.publisher.Publish(ctx, event)
		w.metrics.RecordEventPublished(string(event.Type), err)
		if err != nil {
			w.logger.Warn("event publish failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Stop closes the queue and waits for Run to drain it.
func (w *NotificationWorker) Stop() {
	w.once.Do(func() { close(w.queue) })
	<-w.done
}

// StartNotificationWorker registers notification handlers and, when a worker
// is given, starts forwarding events in the background.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, w *NotificationWorker) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if w != nil {
		go w.Run(ctx)
	}
}
