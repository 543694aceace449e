package service

import (
	"context"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
)

type ProgressionService interface {
	// Enroll creates a level 1 relationship for contactID, or returns the
	// existing one.
	Enroll(ctx context.Context, contactID string) (*domain.ContactRelationship, error)
	GetRelationship(ctx context.Context, contactID string) (*domain.ContactRelationship, error)
	ListRelationships(ctx context.Context) ([]*domain.ContactRelationship, error)

	IsLevelComplete(ctx context.Context, contactID string, level int) (bool, error)
	IsLevelUnlocked(ctx context.Context, contactID string, level int) (bool, error)
	LevelOverview(ctx context.Context, contactID string) ([]progression.LevelState, error)
	SwitchLevel(ctx context.Context, contactID string, target int) (*domain.ContactRelationship, error)

	StartPath(ctx context.Context, contactID, pathID string) (*domain.PathInstance, error)
	CompleteStep(ctx context.Context, contactID string, stepIndex int) (*StepProgress, error)
	EndPath(ctx context.Context, contactID string) (*domain.PathInstance, error)
	SkipPath(ctx context.Context, contactID string) (*domain.PathInstance, error)
	ListPathInstances(ctx context.Context, contactID string) ([]*domain.PathInstance, error)

	Timeline(ctx context.Context, contactID string) ([]progression.TimelineEvent, error)
}

type OutreachService interface {
	Schedule(ctx context.Context, o *domain.Outreach) error
	// Complete marks the outreach done. A step-linked outreach also completes
	// its step in the same transaction.
	Complete(ctx context.Context, id string) (*domain.Outreach, error)
	List(ctx context.Context, contactID string) ([]*domain.Outreach, error)
}

type InteractionService interface {
	Log(ctx context.Context, i *domain.Interaction) error
	List(ctx context.Context, contactID string) ([]*domain.Interaction, error)
	Delete(ctx context.Context, id string) error
}

// StepProgress is the state after a step completion.
type StepProgress struct {
	Relationship *domain.ContactRelationship
	Instance     *domain.PathInstance
	Steps        []*domain.StepInstance
	// PathEnded is set when the completed step was the last open one.
	PathEnded bool
}
