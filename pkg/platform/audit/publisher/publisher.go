// Package publisher fans audit events out to the store and an optional
// best-effort sink. The store is the source of truth; sink failures are
// logged, never propagated.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "govlink/pkg/domain"
	audit "govlink/pkg/platform/audit"
)

// Sink is an optional secondary destination, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Publisher appends events to the store synchronously or through a buffered
// background worker.
type Publisher struct {
	store  audit.Store
	sink   Sink
	logger *slog.Logger

	inbox chan audit.Event
	done  chan struct{}
	once  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches Emit to a buffered channel drained by a
// background worker. Close drains the buffer before returning.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithSink adds a best-effort secondary destination.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// WithLogger sets a logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records one event. In async mode a full buffer falls back to a
// synchronous write rather than dropping the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}

	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		default:
		}
	}
	return p.write(ctx, event)
}

// List returns the recorded events of one run.
func (p *Publisher) List(ctx context.Context, run id.RunID) ([]audit.Event, error) {
	return p.store.ListByRun(ctx, run)
}

// Close stops the background worker after draining buffered events. Safe to
// call in sync mode and safe to call twice.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.write(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("audit append failed", "action", string(event.Action), "error", err)
		}
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", string(event.Action), "error", err)
		}
	}
	return nil
}
