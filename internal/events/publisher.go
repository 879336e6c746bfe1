// Package events publishes run-completed notifications.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"controller-sizer/internal/domain"
)

// Publisher announces finished runs.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, ev domain.RunCompleted) error
	Close() error
}

// KafkaConfig holds the writer settings.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by run ID.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

var errNoBrokers = errors.New("at least one broker is required")

// NewKafkaPublisher creates a publisher with a hash-balanced writer so all
// events of one run land on the same partition.
func NewKafkaPublisher(cfg KafkaConfig, log *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errNoBrokers
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic must not be empty")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: false,
	}
	return newKafkaPublisher(w, cfg.Topic, log), nil
}

func newKafkaPublisher(w messageWriter, topic string, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{writer: w, topic: topic, log: log}
}

// PublishRunCompleted writes ev synchronously.
func (p *KafkaPublisher) PublishRunCompleted(ctx context.Context, ev domain.RunCompleted) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.RunID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", ev.RunID, err)
	}
	p.log.Debug("run event published", zap.String("topic", p.topic), zap.String("run_id", ev.RunID))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event.
type NopPublisher struct{}

// PublishRunCompleted does nothing.
func (NopPublisher) PublishRunCompleted(context.Context, domain.RunCompleted) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// MemoryPublisher keeps every event in memory. Used in tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []domain.RunCompleted
	closed bool
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

var errClosed = errors.New("publisher closed")

// PublishRunCompleted appends ev.
func (p *MemoryPublisher) PublishRunCompleted(_ context.Context, ev domain.RunCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errClosed
	}
	p.events = append(p.events, ev)
	return nil
}

// Events returns a copy of the published events.
func (p *MemoryPublisher) Events() []domain.RunCompleted {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.RunCompleted, len(p.events))
	copy(out, p.events)
	return out
}

// Close rejects further events.
func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
