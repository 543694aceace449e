package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/alexanderramin/rapport/internal/progression"
)

// Use-case outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// Outcome separates progression rules the caller ran into (a gated switch,
// an unknown contact) from failures of the service itself.
func (e UseCaseEvent) Outcome() string {
	switch {
	case e.Err == nil:
		return OutcomeOK
	case errors.Is(e.Err, progression.ErrPersistence):
		return OutcomeFailed
	case errors.Is(e.Err, progression.ErrRequiresCompletion),
		errors.Is(e.Err, progression.ErrInvalidTarget),
		errors.Is(e.Err, progression.ErrNotFound),
		errors.Is(e.Err, progression.ErrActivePath):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type slogUseCaseObserver struct {
	logger *slog.Logger
}

// NewSlogUseCaseObserver logs every use case through logger. Rejections are
// logged at info, failures at error.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &slogUseCaseObserver{logger: logger}
}

func (o *slogUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	outcome := event.Outcome()
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"outcome", outcome,
		"duration_ms", event.Duration.Milliseconds(),
	)
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		attrs = append(attrs, k, event.Fields[k])
	}

	switch outcome {
	case OutcomeOK:
		o.logger.InfoContext(ctx, "use case", attrs...)
	case OutcomeRejected:
		o.logger.InfoContext(ctx, "use case", append(attrs, "reason", event.Err.Error())...)
	default:
		var pe *progression.PersistenceError
		attrs = append(attrs, "error", event.Err.Error(), "retryable", errors.As(event.Err, &pe))
		o.logger.ErrorContext(ctx, "use case", attrs...)
	}
}
