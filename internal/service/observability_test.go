package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/stretchr/testify/assert"
)

func TestUseCaseEvent_Outcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, OutcomeOK},
		{"gated switch", &progression.RequiresCompletionError{Level: 2}, OutcomeRejected},
		{"unknown contact", fmt.Errorf("contact x: %w", progression.ErrNotFound), OutcomeRejected},
		{"bad level", progression.ErrInvalidTarget, OutcomeRejected},
		{"active path", &progression.ActivePathError{InstanceID: "i1"}, OutcomeRejected},
		{"storage", &progression.PersistenceError{Op: "switching level", Err: errors.New("disk")}, OutcomeFailed},
		{"unexpected", errors.New("boom"), OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UseCaseEvent{Err: tt.err}.Outcome())
		})
	}
}

func TestSlogUseCaseObserver_Success(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "switch-level",
		Duration: 12 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"contact_id": "alice", "target": 2},
	})

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "use_case=switch-level")
	assert.Contains(t, out, "outcome=ok")
	assert.Contains(t, out, "duration_ms=12")
	assert.Contains(t, out, "contact_id=alice target=2")
}

func TestSlogUseCaseObserver_RejectionIsInfo(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "switch-level", Err: &progression.RequiresCompletionError{Level: 1}})

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"outcome":"rejected"`)
	assert.Contains(t, out, `"reason":"Complete Level 1 first."`)
}

func TestSlogUseCaseObserver_FailureIsError(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "start-path",
		Err:  &progression.PersistenceError{Op: "starting path", Err: errors.New("locked")},
	})

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"outcome":"failed"`)
	assert.Contains(t, out, `"error":"starting path: locked"`)
	assert.Contains(t, out, `"retryable":true`)
}

func TestNewSlogUseCaseObserver_NilIsNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))
}
