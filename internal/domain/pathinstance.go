package domain

import (
	"fmt"
	"time"
)

// PathInstance is one attempt at a development path by one contact.
type PathInstance struct {
	ID                    string
	ContactRelationshipID string
	PathID                string
	Tier                  int
	Status                PathStatus
	StartedAt             time.Time
	EndedAt               *time.Time
}

// IsTerminal returns true for ended and skipped instances.
func (p *PathInstance) IsTerminal() bool {
	return p.Status == PathEnded || p.Status == PathSkipped
}

// End marks the instance finished.
func (p *PathInstance) End(now time.Time) error {
	return p.finish(PathEnded, now)
}

// Skip marks the instance as deliberately not pursued. Skipping still
// satisfies the level gate.
func (p *PathInstance) Skip(now time.Time) error {
	return p.finish(PathSkipped, now)
}

func (p *PathInstance) finish(status PathStatus, now time.Time) error {
	if p.IsTerminal() {
		return fmt.Errorf("path instance %s is already %s", p.ID, p.Status)
	}
	p.Status = status
	p.EndedAt = &now
	return nil
}

// StepInstance marks one completed step of a path instance. Rows carried
// over from before completion times were recorded have a nil CompletedAt.
type StepInstance struct {
	PathInstanceID string
	StepIndex      int
	StepID         string
	CompletedAt    *time.Time
}

// HasTimestamp reports whether the real completion time is known.
func (s *StepInstance) HasTimestamp() bool {
	return s.CompletedAt != nil
}
