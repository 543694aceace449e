package domain

import (
	"fmt"
	"time"
)

// LevelSwitch is an immutable history entry.
type LevelSwitch struct {
	FromLevel  int
	ToLevel    int
	SwitchedAt time.Time
}

// ContactRelationship is the per-contact progression aggregate.
type ContactRelationship struct {
	ID                    string
	ContactID             string
	CurrentLevel          int
	CurrentPathID         *string
	CurrentStepIndex      *int
	CurrentPathInstanceID *string
	LevelSwitches         []LevelSwitch
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewContactRelationship creates a relationship at level 1 with no path.
func NewContactRelationship(id, contactID string, now time.Time) *ContactRelationship {
	return &ContactRelationship{
		ID:           id,
		ContactID:    contactID,
		CurrentLevel: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy so callers can compute a new state without
// touching the snapshot they read.
func (r *ContactRelationship) Clone() *ContactRelationship {
	c := *r
	c.CurrentPathID = cloneStr(r.CurrentPathID)
	c.CurrentPathInstanceID = cloneStr(r.CurrentPathInstanceID)
	c.CurrentStepIndex = cloneInt(r.CurrentStepIndex)
	if r.LevelSwitches != nil {
		c.LevelSwitches = make([]LevelSwitch, len(r.LevelSwitches))
		copy(c.LevelSwitches, r.LevelSwitches)
	}
	return &c
}

// ApplyLevelSwitch records a move to level `to`, appends history and clears
// the path binding. Guards live in the progression package; this only
// rejects non-positive levels and no-ops.
func (r *ContactRelationship) ApplyLevelSwitch(to int, now time.Time) (LevelSwitch, error) {
	if to < 1 {
		return LevelSwitch{}, fmt.Errorf("level must be positive, got %d", to)
	}
	if to == r.CurrentLevel {
		return LevelSwitch{}, fmt.Errorf("already at level %d", to)
	}
	sw := LevelSwitch{FromLevel: r.CurrentLevel, ToLevel: to, SwitchedAt: now}
	r.LevelSwitches = append(r.LevelSwitches, sw)
	r.CurrentLevel = to
	r.ClearPath(now)
	return sw, nil
}

// BindPath points the relationship at a freshly started path instance.
func (r *ContactRelationship) BindPath(inst *PathInstance, now time.Time) {
	pathID := inst.PathID
	instID := inst.ID
	step := 0
	r.CurrentPathID = &pathID
	r.CurrentPathInstanceID = &instID
	r.CurrentStepIndex = &step
	r.UpdatedAt = now
}

// ClearPath removes the path binding entirely.
func (r *ContactRelationship) ClearPath(now time.Time) {
	r.CurrentPathID = nil
	r.CurrentPathInstanceID = nil
	r.CurrentStepIndex = nil
	r.UpdatedAt = now
}

// SetStep moves the step cursor. A nil index means no active step.
func (r *ContactRelationship) SetStep(index *int, now time.Time) {
	r.CurrentStepIndex = cloneInt(index)
	r.UpdatedAt = now
}

// HasPathInstance reports whether the relationship is bound to instance id.
func (r *ContactRelationship) HasPathInstance(id string) bool {
	return r.CurrentPathInstanceID != nil && *r.CurrentPathInstanceID == id
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
