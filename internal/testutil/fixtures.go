package testutil

import (
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/google/uuid"
)

// Relationship options
type RelationshipOption func(*domain.ContactRelationship)

func WithLevel(level int) RelationshipOption {
	return func(r *domain.ContactRelationship) {
		r.CurrentLevel = level
	}
}

func WithSwitches(switches ...domain.LevelSwitch) RelationshipOption {
	return func(r *domain.ContactRelationship) {
		r.LevelSwitches = append(r.LevelSwitches, switches...)
	}
}

func WithCreatedAt(t time.Time) RelationshipOption {
	return func(r *domain.ContactRelationship) {
		r.CreatedAt = t
		r.UpdatedAt = t
	}
}

func NewTestRelationship(contactID string, opts ...RelationshipOption) *domain.ContactRelationship {
	now := time.Now().UTC()
	r := domain.NewContactRelationship(uuid.New().String(), contactID, now)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PathInstance options
type PathInstanceOption func(*domain.PathInstance)

func WithPathStatus(s domain.PathStatus) PathInstanceOption {
	return func(p *domain.PathInstance) {
		p.Status = s
		if s != domain.PathActive && p.EndedAt == nil {
			ended := p.StartedAt.Add(time.Hour)
			p.EndedAt = &ended
		}
	}
}

func WithStartedAt(t time.Time) PathInstanceOption {
	return func(p *domain.PathInstance) {
		p.StartedAt = t
	}
}

func NewTestPathInstance(relationshipID, pathID string, tier int, opts ...PathInstanceOption) *domain.PathInstance {
	p := &domain.PathInstance{
		ID:                    uuid.New().String(),
		ContactRelationshipID: relationshipID,
		PathID:                pathID,
		Tier:                  tier,
		Status:                domain.PathActive,
		StartedAt:             time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Outreach options
type OutreachOption func(*domain.Outreach)

func WithDueDate(d time.Time) OutreachOption {
	return func(o *domain.Outreach) {
		o.DueDate = d
	}
}

func WithOutreachStatus(s domain.OutreachStatus) OutreachOption {
	return func(o *domain.Outreach) {
		o.Status = s
	}
}

func WithStepLink(pathInstanceID string, stepIndex int) OutreachOption {
	return func(o *domain.Outreach) {
		o.PathInstanceID = &pathInstanceID
		o.StepIndex = &stepIndex
	}
}

func NewTestOutreach(contactID, title string, opts ...OutreachOption) *domain.Outreach {
	now := time.Now().UTC()
	o := &domain.Outreach{
		ID:        uuid.New().String(),
		ContactID: contactID,
		Title:     title,
		DueDate:   now.Add(24 * time.Hour),
		Status:    domain.OutreachPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Interaction options
type InteractionOption func(*domain.Interaction)

func WithInteractionDate(d time.Time) InteractionOption {
	return func(i *domain.Interaction) {
		i.Date = d
	}
}

func WithWarmth(w int) InteractionOption {
	return func(i *domain.Interaction) {
		i.Warmth = w
	}
}

func WithTopics(topics ...string) InteractionOption {
	return func(i *domain.Interaction) {
		i.Topics = topics
	}
}

func WithStrengthened() InteractionOption {
	return func(i *domain.Interaction) {
		i.Strengthened = true
	}
}

func WithNote(note string) InteractionOption {
	return func(i *domain.Interaction) {
		i.Note = note
	}
}

func NewTestInteraction(contactID string, opts ...InteractionOption) *domain.Interaction {
	now := time.Now().UTC()
	i := &domain.Interaction{
		ID:        uuid.New().String(),
		ContactID: contactID,
		Date:      now,
		Location:  "Cafe",
		Topics:    []string{},
		Warmth:    3,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}
