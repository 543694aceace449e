package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/notify"
)

// Option configures the services built by this package.
type Option func(*core)

// WithObserver sets the use-case observer. Nil keeps the no-op observer.
func WithObserver(o UseCaseObserver) Option {
	return func(c *core) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithPublisher sets where committed changes are announced.
func WithPublisher(p notify.Publisher) Option {
	return func(c *core) {
		if p != nil {
			c.publisher = p
		}
	}
}

// WithClock replaces time.Now; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		c.now = now
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *core) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrictGate makes level advances check every level being skipped.
func WithStrictGate(strict bool) Option {
	return func(c *core) {
		c.strictGate = strict
	}
}

// core holds what every service shares.
type core struct {
	uow        db.UnitOfWork
	observer   UseCaseObserver
	publisher  notify.Publisher
	now        func() time.Time
	logger     *slog.Logger
	strictGate bool
}

func newCore(uow db.UnitOfWork, opts []Option) core {
	c := core{
		uow:       uow,
		observer:  NoopUseCaseObserver{},
		publisher: notify.NoopPublisher{},
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// track starts a use-case measurement. Call the returned func with the
// final error.
func (c *core) track(ctx context.Context, name string, fields map[string]any) func(error) {
	startedAt := time.Now()
	return func(err error) {
		c.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}
}

// publish announces a committed change. The change is already durable, so a
// delivery failure is logged rather than returned.
func (c *core) publish(ctx context.Context, events ...notify.Event) {
	for _, e := range events {
		if err := c.publisher.Publish(ctx, e); err != nil {
			c.logger.WarnContext(ctx, "publishing change failed",
				"type", string(e.Type), "contact_id", e.ContactID, "error", err)
		}
	}
}
