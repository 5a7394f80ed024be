package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Publisher forwards events outside the process.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events to one topic keyed by aggregate id.
type KafkaPublisher struct {
	mu        sync.Mutex
	w         messageWriter
	cfg       config.KafkaConfig
	newWriter func(config.KafkaConfig) messageWriter
	lastReset time.Time
}

// NewKafkaPublisher builds a publisher for cfg.Brokers.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return newKafkaPublisher(cfg, newKafkaWriter)
}

func newKafkaPublisher(cfg config.KafkaConfig, factory func(config.KafkaConfig) messageWriter) *KafkaPublisher {
	return &KafkaPublisher{cfg: cfg, w: factory(cfg), newWriter: factory}
}

func newKafkaWriter(cfg config.KafkaConfig) messageWriter {
	// Short metadata TTL lets the writer recover from broker address changes.
	tr := &kafka.Transport{
		ClientID:    cfg.ClientID,
		MetadataTTL: 10 * time.Second,
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Transport:    tr,
	}
}

// Publish serializes the event and writes it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.Aggregate + ":" + strconv.FormatInt(event.AggregateID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	write := func() error {
		p.mu.Lock()
		w := p.w
		p.mu.Unlock()
		if w == nil {
			return context.Canceled
		}
		cctx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout())
		defer cancel()
		return w.WriteMessages(cctx, msg)
	}

	if err := write(); err != nil {
		if shouldReset(err) {
			p.reset()
			return write()
		}
		return err
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.w = nil
	return err
}

var resetSuspects = []string{
	"dial tcp",
	"connection refused",
	"i/o timeout",
	"eof",
	"broken pipe",
	"not leader",
	"unknown broker",
	"failed to dial",
}

func shouldReset(err error) bool {
	s := strings.ToLower(err.Error())
	for _, sub := range resetSuspects {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (p *KafkaPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.w == nil || time.Since(p.lastReset) < 2*time.Second {
		return
	}
	_ = p.w.Close()
	p.w = p.newWriter(p.cfg)
	p.lastReset = time.Now()
}
