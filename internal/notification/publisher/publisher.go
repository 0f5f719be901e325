// Package publisher fans computed notification batches out to Kafka so
// downstream consumers (UI push, messaging bridges) can diff runs using the
// deterministic notification ids.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"kindred/internal/notification"
	id "kindred/pkg/domain"
)

// Publisher writes notification batches to a topic, keyed by tenant so a
// tenant's batches stay ordered on one partition.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects a producer to the given brokers.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect notification producer: %w", err)
	}
	p := &Publisher{client: client, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Batch is the wire shape of one computation run.
type Batch struct {
	TenantID      id.TenantID                 `json:"tenantId"`
	Notifications []notification.Notification `json:"notifications"`
}

// Publish writes one batch synchronously. Failures are returned, not
// retried; a batch is recomputed wholesale on the next population change
// anyway.
func (p *Publisher) Publish(ctx context.Context, tenantID id.TenantID, batch []notification.Notification) error {
	payload, err := json.Marshal(Batch{TenantID: tenantID, Notifications: batch})
	if err != nil {
		return fmt.Errorf("encode notification batch: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(tenantID.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "notification publish failed",
				"tenant_id", tenantID,
				"batch_size", len(batch),
				"error", err,
			)
		}
		return fmt.Errorf("publish notification batch: %w", err)
	}
	return nil
}

// Close flushes and tears down the producer.
func (p *Publisher) Close() {
	p.client.Close()
}
