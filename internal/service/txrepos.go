package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/repository"
)

// txRepos are repositories bound to one transaction.
type txRepos struct {
	relationships repository.RelationshipRepo
	instances     repository.PathInstanceRepo
	steps         repository.StepInstanceRepo
	outreaches    repository.OutreachRepo
	interactions  repository.InteractionRepo
}

func newTxRepos(tx db.DBTX) txRepos {
	return txRepos{
		relationships: repository.NewSQLiteRelationshipRepo(tx),
		instances:     repository.NewSQLitePathInstanceRepo(tx),
		steps:         repository.NewSQLiteStepInstanceRepo(tx),
		outreaches:    repository.NewSQLiteOutreachRepo(tx),
		interactions:  repository.NewSQLiteInteractionRepo(tx),
	}
}

func loadRelationship(ctx context.Context, relationships repository.RelationshipRepo, contactID string) (*domain.ContactRelationship, error) {
	rel, err := relationships.GetByContactID(ctx, contactID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, contactNotFound(contactID)
	}
	return rel, err
}

// completeStep records step idx of inst as done. The relationship's step
// cursor only moves when inst is the relationship's current active
// instance; finishing its last open step ends it.
func completeStep(ctx context.Context, r txRepos, cat *catalog.Catalog, rel *domain.ContactRelationship, inst *domain.PathInstance, idx int, now time.Time) (*StepProgress, error) {
	path, ok := cat.Paths.Get(inst.PathID)
	if !ok {
		return nil, fmt.Errorf("path %q is no longer in the catalog: %w", inst.PathID, progression.ErrInvalidTarget)
	}
	if !path.ValidStep(idx) {
		return nil, fmt.Errorf("step %d of path %q: %w", idx, path.ID, progression.ErrInvalidTarget)
	}

	if err := r.steps.Complete(ctx, &domain.StepInstance{
		PathInstanceID: inst.ID,
		StepIndex:      idx,
		StepID:         path.Steps[idx].ID,
		CompletedAt:    &now,
	}); err != nil {
		return nil, err
	}
	steps, err := r.steps.ListByPathInstance(ctx, inst.ID)
	if err != nil {
		return nil, err
	}

	progress := &StepProgress{Relationship: rel, Instance: inst, Steps: steps}
	if inst.Status != domain.PathActive || !rel.HasPathInstance(inst.ID) {
		return progress, nil
	}

	next := firstOpenStep(path, steps)
	if next == nil {
		if err := inst.End(now); err != nil {
			return nil, err
		}
		if err := r.instances.Update(ctx, inst); err != nil {
			return nil, err
		}
		progress.PathEnded = true
	}
	rel.SetStep(next, now)
	if err := r.relationships.Update(ctx, rel); err != nil {
		return nil, err
	}
	return progress, nil
}

// firstOpenStep returns the lowest step index without a StepInstance.
func firstOpenStep(path *domain.Path, steps []*domain.StepInstance) *int {
	done := make(map[int]bool, len(steps))
	for _, s := range steps {
		done[s.StepIndex] = true
	}
	for _, s := range path.Steps {
		if !done[s.Index] {
			idx := s.Index
			return &idx
		}
	}
	return nil
}
