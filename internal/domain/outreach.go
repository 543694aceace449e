package domain

import (
	"fmt"
	"time"
)

// Outreach is a scheduled or completed touchpoint with a contact. When
// PathInstanceID and StepIndex are set it stands for a development step.
type Outreach struct {
	ID             string
	ContactID      string
	Title          string
	DueDate        time.Time
	Status         OutreachStatus
	PathInstanceID *string
	StepIndex      *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLinkedToStep reports whether the outreach represents a development step.
func (o *Outreach) IsLinkedToStep() bool {
	return o.PathInstanceID != nil && o.StepIndex != nil
}

// Complete marks the outreach done. Completing twice is a no-op.
func (o *Outreach) Complete(now time.Time) error {
	switch o.Status {
	case OutreachCompleted:
		return nil
	case OutreachPending:
		o.Status = OutreachCompleted
		o.UpdatedAt = now
		return nil
	default:
		return fmt.Errorf("outreach %s has unknown status %q", o.ID, o.Status)
	}
}

// Interaction is a free-standing log entry of contact with someone.
type Interaction struct {
	ID           string
	ContactID    string
	Date         time.Time
	Location     string
	Topics       []string
	Warmth       int
	Strengthened bool
	Note         string
	CreatedAt    time.Time
}

// ValidateWarmth checks the 1..5 warmth scale.
func (i *Interaction) ValidateWarmth() error {
	if i.Warmth < 1 || i.Warmth > 5 {
		return fmt.Errorf("warmth must be between 1 and 5, got %d", i.Warmth)
	}
	return nil
}
