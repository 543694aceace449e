package repository

import (
	"context"

	"github.com/alexanderramin/rapport/internal/domain"
)

type RelationshipRepo interface {
	Create(ctx context.Context, r *domain.ContactRelationship) error
	GetByContactID(ctx context.Context, contactID string) (*domain.ContactRelationship, error)
	List(ctx context.Context) ([]*domain.ContactRelationship, error)
	// Update writes the scalar state only; history goes through AppendLevelSwitch.
	Update(ctx context.Context, r *domain.ContactRelationship) error
	AppendLevelSwitch(ctx context.Context, relationshipID string, sw domain.LevelSwitch) error
}

type PathInstanceRepo interface {
	Create(ctx context.Context, p *domain.PathInstance) error
	GetByID(ctx context.Context, id string) (*domain.PathInstance, error)
	// ListByRelationship returns instances ordered by start time. A nil tier
	// returns every tier.
	ListByRelationship(ctx context.Context, relationshipID string, tier *int) ([]*domain.PathInstance, error)
	Update(ctx context.Context, p *domain.PathInstance) error
}

type StepInstanceRepo interface {
	// Complete records a step as done. Completing an already completed step
	// keeps the original time.
	Complete(ctx context.Context, s *domain.StepInstance) error
	ListByPathInstance(ctx context.Context, pathInstanceID string) ([]*domain.StepInstance, error)
}

type OutreachRepo interface {
	Create(ctx context.Context, o *domain.Outreach) error
	GetByID(ctx context.Context, id string) (*domain.Outreach, error)
	ListByContact(ctx context.Context, contactID string) ([]*domain.Outreach, error)
	ListByPathInstance(ctx context.Context, pathInstanceID string) ([]*domain.Outreach, error)
	Update(ctx context.Context, o *domain.Outreach) error
}

type InteractionRepo interface {
	Create(ctx context.Context, i *domain.Interaction) error
	ListByContact(ctx context.Context, contactID string) ([]*domain.Interaction, error)
	Delete(ctx context.Context, id string) error
}
