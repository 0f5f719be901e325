// Package worker recomputes a tenant's notifications whenever its population
// changes. It keeps background processing testable: signals arrive on a
// channel and every collaborator is an interface.
package worker

import (
	"context"
	"log/slog"
	"time"

	"kindred/internal/member/models"
	"kindred/internal/notification"
	"kindred/internal/platform/metrics"
	id "kindred/pkg/domain"
	"kindred/pkg/platform/circuit"
)

// PopulationSource supplies the current member snapshot for a tenant.
type PopulationSource interface {
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Member, error)
}

// MessageSource supplies the scheduled custom messages for a tenant.
type MessageSource interface {
	Snapshot(ctx context.Context, tenantID id.TenantID) ([]notification.CustomMessage, error)
}

// Sink receives each computed batch.
type Sink interface {
	Publish(ctx context.Context, tenantID id.TenantID, batch []notification.Notification) error
}

// Clock returns "today"; injected so runs are reproducible in tests.
type Clock func() time.Time

// Worker consumes population-change signals and republishes the tenant's
// notification list.
type Worker struct {
	members  PopulationSource
	messages MessageSource
	sink     Sink
	fallback Sink
	breaker  *circuit.Breaker
	clock    Clock
	inbox    <-chan id.TenantID
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the Worker.
type Option func(*Worker)

// WithLogger sets a logger for compute failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(w *Worker) {
		w.clock = clock
	}
}

// WithFallback sets a secondary sink used while the primary keeps failing.
func WithFallback(sink Sink) Option {
	return func(w *Worker) {
		w.fallback = sink
	}
}

// WithMetrics records batch sizes and compute durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// New constructs a Worker reading change signals from inbox.
func New(members PopulationSource, messages MessageSource, sink Sink, inbox <-chan id.TenantID, opts ...Option) *Worker {
	w := &Worker{
		members:  members,
		messages: messages,
		sink:     sink,
		breaker:  circuit.New("notification-sink", circuit.WithFailureThreshold(3)),
		clock:    time.Now,
		inbox:    inbox,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes signals until the context is cancelled. A failed recompute
// is logged and dropped; the next change signal recomputes wholesale, so
// nothing is lost.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tenantID := <-w.inbox:
			if err := w.recompute(ctx, tenantID); err != nil {
				if w.logger != nil {
					w.logger.ErrorContext(ctx, "notification recompute failed",
						"tenant_id", tenantID,
						"error", err,
					)
				}
			}
		}
	}
}

func (w *Worker) recompute(ctx context.Context, tenantID id.TenantID) error {
	population, err := w.members.ListByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	messages, err := w.messages.Snapshot(ctx, tenantID)
	if err != nil {
		return err
	}
	start := time.Now()
	batch := notification.Compute(population, messages, w.clock())
	if w.metrics != nil {
		w.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
		w.metrics.NotificationsComputed.Add(float64(len(batch)))
	}
	return w.publish(ctx, tenantID, batch)
}

// publish delivers a batch through the primary sink, tripping over to the
// fallback when the primary keeps failing. With the circuit open the primary
// is still attempted on every batch so recovery closes it again; the batch goes
// to the fallback either way, so nothing is dropped while degraded.
func (w *Worker) publish(ctx context.Context, tenantID id.TenantID, batch []notification.Notification) error {
	if w.fallback == nil {
		return w.sink.Publish(ctx, tenantID, batch)
	}

	err := w.sink.Publish(ctx, tenantID, batch)
	if err == nil {
		if _, change := w.breaker.RecordSuccess(); change.Closed && w.logger != nil {
			w.logger.InfoContext(ctx, "notification sink recovered", "breaker", w.breaker.Name())
		}
		return nil
	}

	if _, change := w.breaker.RecordFailure(); change.Opened && w.logger != nil {
		w.logger.ErrorContext(ctx, "notification sink unavailable, using fallback",
			"breaker", w.breaker.Name(),
			"error", err,
		)
	}
	return w.fallback.Publish(ctx, tenantID, batch)
}
