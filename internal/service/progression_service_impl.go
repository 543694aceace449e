package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/repository"
	"github.com/google/uuid"
)

type progressionService struct {
	core
	catalog       *catalog.Catalog
	relationships repository.RelationshipRepo
	instances     repository.PathInstanceRepo
}

func NewProgressionService(
	cat *catalog.Catalog,
	relationships repository.RelationshipRepo,
	instances repository.PathInstanceRepo,
	uow db.UnitOfWork,
	opts ...Option,
) ProgressionService {
	return &progressionService{
		core:          newCore(uow, opts),
		catalog:       cat,
		relationships: relationships,
		instances:     instances,
	}
}

func (s *progressionService) Enroll(ctx context.Context, contactID string) (rel *domain.ContactRelationship, err error) {
	fields := map[string]any{"contact_id": contactID}
	done := s.track(ctx, "enroll", fields)
	defer func() { done(err) }()

	if contactID == "" {
		return nil, fmt.Errorf("contact id is required: %w", progression.ErrInvalidTarget)
	}

	created := false
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteRelationshipRepo(tx)
		existing, err := repo.GetByContactID(ctx, contactID)
		if err == nil {
			rel = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		rel = domain.NewContactRelationship(uuid.New().String(), contactID, s.now())
		created = true
		return repo.Create(ctx, rel)
	})
	if err = classify("enrolling contact", err); err != nil {
		return nil, err
	}
	fields["created"] = created

	if created {
		s.publish(ctx, notify.Event{Type: notify.EventEnrolled, ContactID: contactID, Level: rel.CurrentLevel, At: rel.CreatedAt})
	}
	return rel, nil
}

func (s *progressionService) GetRelationship(ctx context.Context, contactID string) (*domain.ContactRelationship, error) {
	rel, err := loadRelationship(ctx, s.relationships, contactID)
	return rel, classify("loading relationship", err)
}

func (s *progressionService) ListRelationships(ctx context.Context) ([]*domain.ContactRelationship, error) {
	rels, err := s.relationships.List(ctx)
	return rels, classify("listing relationships", err)
}

// snapshot reads the relationship and its instances. A missing relationship
// is reported as nil with no error.
func (s *progressionService) snapshot(ctx context.Context, contactID string) (*domain.ContactRelationship, []*domain.PathInstance, error) {
	rel, err := s.relationships.GetByContactID(ctx, contactID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, classify("loading relationship", err)
	}
	instances, err := s.instances.ListByRelationship(ctx, rel.ID, nil)
	if err != nil {
		return nil, nil, classify("loading path instances", err)
	}
	return rel, instances, nil
}

// IsLevelComplete is false for every level when the contact has no
// relationship yet.
func (s *progressionService) IsLevelComplete(ctx context.Context, contactID string, level int) (bool, error) {
	if err := progression.ValidateTarget(s.catalog.Levels, level); err != nil {
		return false, err
	}
	_, instances, err := s.snapshot(ctx, contactID)
	if err != nil {
		return false, err
	}
	return progression.LevelComplete(instances, level), nil
}

func (s *progressionService) IsLevelUnlocked(ctx context.Context, contactID string, level int) (bool, error) {
	if err := progression.ValidateTarget(s.catalog.Levels, level); err != nil {
		return false, err
	}
	rel, instances, err := s.snapshot(ctx, contactID)
	if err != nil {
		return false, err
	}
	complete := progression.CompletionSet(instances)
	return progression.LevelUnlocked(level, currentLevelOf(rel), func(l int) bool { return complete[l] }), nil
}

func (s *progressionService) LevelOverview(ctx context.Context, contactID string) ([]progression.LevelState, error) {
	rel, instances, err := s.snapshot(ctx, contactID)
	if err != nil {
		return nil, err
	}
	complete := progression.CompletionSet(instances)
	return progression.Overview(s.catalog.Levels, currentLevelOf(rel), func(l int) bool { return complete[l] }), nil
}

// currentLevelOf is 0 for a contact that was never enrolled, so no level is
// marked current and only level 1 reads as unlocked.
func currentLevelOf(rel *domain.ContactRelationship) int {
	if rel == nil {
		return 0
	}
	return rel.CurrentLevel
}

func (s *progressionService) SwitchLevel(ctx context.Context, contactID string, target int) (result *domain.ContactRelationship, err error) {
	fields := map[string]any{"contact_id": contactID, "target": target}
	done := s.track(ctx, "switch-level", fields)
	defer func() { done(err) }()

	if err = progression.ValidateTarget(s.catalog.Levels, target); err != nil {
		return nil, err
	}

	var decision progression.SwitchDecision
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		rel, err := loadRelationship(ctx, r.relationships, contactID)
		if err != nil {
			return err
		}
		instances, err := r.instances.ListByRelationship(ctx, rel.ID, nil)
		if err != nil {
			return err
		}
		complete := progression.CompletionSet(instances)

		decision, err = progression.DecideSwitch(rel, target, func(l int) bool { return complete[l] },
			progression.SwitchOptions{StrictGate: s.strictGate}, s.now())
		if err != nil {
			return err
		}
		if !decision.Changed {
			return nil
		}
		if err := r.relationships.Update(ctx, decision.State); err != nil {
			return err
		}
		return r.relationships.AppendLevelSwitch(ctx, decision.State.ID, decision.Switch)
	})
	if err = classify("switching level", err); err != nil {
		return nil, err
	}
	fields["changed"] = decision.Changed

	if decision.Changed {
		s.publish(ctx, notify.Event{
			Type:      notify.EventLevelSwitched,
			ContactID: contactID,
			Level:     decision.Switch.ToLevel,
			FromLevel: decision.Switch.FromLevel,
			At:        decision.Switch.SwitchedAt,
		})
	}
	return decision.State, nil
}

func (s *progressionService) StartPath(ctx context.Context, contactID, pathID string) (inst *domain.PathInstance, err error) {
	fields := map[string]any{"contact_id": contactID, "path_id": pathID}
	done := s.track(ctx, "start-path", fields)
	defer func() { done(err) }()

	path, ok := s.catalog.Paths.Get(pathID)
	if !ok {
		return nil, fmt.Errorf("unknown path %q: %w", pathID, progression.ErrInvalidTarget)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		rel, err := loadRelationship(ctx, r.relationships, contactID)
		if err != nil {
			return err
		}
		if path.Tier != rel.CurrentLevel {
			return fmt.Errorf("path %q belongs to level %d, contact is at level %d: %w",
				pathID, path.Tier, rel.CurrentLevel, progression.ErrInvalidTarget)
		}
		instances, err := r.instances.ListByRelationship(ctx, rel.ID, nil)
		if err != nil {
			return err
		}
		if active := progression.ActiveInstance(instances); active != nil {
			return &progression.ActivePathError{InstanceID: active.ID}
		}

		now := s.now()
		inst = &domain.PathInstance{
			ID:                    uuid.New().String(),
			ContactRelationshipID: rel.ID,
			PathID:                path.ID,
			Tier:                  path.Tier,
			Status:                domain.PathActive,
			StartedAt:             now,
		}
		if err := r.instances.Create(ctx, inst); err != nil {
			return err
		}
		rel.BindPath(inst, now)
		return r.relationships.Update(ctx, rel)
	})
	if err = classify("starting path", err); err != nil {
		return nil, err
	}
	fields["path_instance_id"] = inst.ID

	s.publish(ctx, notify.Event{
		Type:           notify.EventPathStarted,
		ContactID:      contactID,
		Level:          inst.Tier,
		PathID:         inst.PathID,
		PathInstanceID: inst.ID,
		At:             inst.StartedAt,
	})
	return inst, nil
}

func (s *progressionService) CompleteStep(ctx context.Context, contactID string, stepIndex int) (progress *StepProgress, err error) {
	fields := map[string]any{"contact_id": contactID, "step_index": stepIndex}
	done := s.track(ctx, "complete-step", fields)
	defer func() { done(err) }()

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		rel, err := loadRelationship(ctx, r.relationships, contactID)
		if err != nil {
			return err
		}
		if rel.CurrentPathInstanceID == nil {
			return fmt.Errorf("contact %s has no current path: %w", contactID, progression.ErrNotFound)
		}
		inst, err := r.instances.GetByID(ctx, *rel.CurrentPathInstanceID)
		if err != nil {
			return err
		}
		if inst.Status != domain.PathActive {
			return fmt.Errorf("path instance %s is %s: %w", inst.ID, inst.Status, progression.ErrNotFound)
		}
		progress, err = completeStep(ctx, r, s.catalog, rel, inst, stepIndex, now)
		return err
	})
	if err = classify("completing step", err); err != nil {
		return nil, err
	}
	fields["path_ended"] = progress.PathEnded

	idx := stepIndex
	events := []notify.Event{{
		Type:           notify.EventStepCompleted,
		ContactID:      contactID,
		PathID:         progress.Instance.PathID,
		PathInstanceID: progress.Instance.ID,
		StepIndex:      &idx,
		At:             now,
	}}
	if progress.PathEnded {
		events = append(events, notify.Event{
			Type:           notify.EventPathEnded,
			ContactID:      contactID,
			Level:          progress.Instance.Tier,
			PathID:         progress.Instance.PathID,
			PathInstanceID: progress.Instance.ID,
			At:             now,
		})
	}
	s.publish(ctx, events...)
	return progress, nil
}

func (s *progressionService) EndPath(ctx context.Context, contactID string) (*domain.PathInstance, error) {
	return s.finishPath(ctx, contactID, "end-path", domain.PathEnded)
}

// SkipPath still satisfies the level gate.
func (s *progressionService) SkipPath(ctx context.Context, contactID string) (*domain.PathInstance, error) {
	return s.finishPath(ctx, contactID, "skip-path", domain.PathSkipped)
}

// finishPath ends or skips the contact's active instance. The active
// instance may be left over from an earlier level, in which case the
// relationship's own path binding is not touched.
func (s *progressionService) finishPath(ctx context.Context, contactID, useCase string, status domain.PathStatus) (inst *domain.PathInstance, err error) {
	fields := map[string]any{"contact_id": contactID}
	done := s.track(ctx, useCase, fields)
	defer func() { done(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		rel, err := loadRelationship(ctx, r.relationships, contactID)
		if err != nil {
			return err
		}
		instances, err := r.instances.ListByRelationship(ctx, rel.ID, nil)
		if err != nil {
			return err
		}
		inst = progression.ActiveInstance(instances)
		if inst == nil {
			return fmt.Errorf("contact %s has no active path: %w", contactID, progression.ErrNotFound)
		}

		now := s.now()
		if status == domain.PathSkipped {
			err = inst.Skip(now)
		} else {
			err = inst.End(now)
		}
		if err != nil {
			return err
		}
		if err := r.instances.Update(ctx, inst); err != nil {
			return err
		}
		if !rel.HasPathInstance(inst.ID) {
			return nil
		}
		rel.SetStep(nil, now)
		return r.relationships.Update(ctx, rel)
	})
	if err = classify("finishing path", err); err != nil {
		return nil, err
	}
	fields["path_instance_id"] = inst.ID

	eventType := notify.EventPathEnded
	if status == domain.PathSkipped {
		eventType = notify.EventPathSkipped
	}
	s.publish(ctx, notify.Event{
		Type:           eventType,
		ContactID:      contactID,
		Level:          inst.Tier,
		PathID:         inst.PathID,
		PathInstanceID: inst.ID,
		At:             *inst.EndedAt,
	})
	return inst, nil
}

func (s *progressionService) ListPathInstances(ctx context.Context, contactID string) ([]*domain.PathInstance, error) {
	rel, err := loadRelationship(ctx, s.relationships, contactID)
	if err != nil {
		return nil, classify("loading relationship", err)
	}
	instances, err := s.instances.ListByRelationship(ctx, rel.ID, nil)
	return instances, classify("listing path instances", err)
}

// Timeline merges the contact's history into one list, newest first. The
// path shown is the current instance, or the most recent one at the current
// level when none is bound.
func (s *progressionService) Timeline(ctx context.Context, contactID string) ([]progression.TimelineEvent, error) {
	var in progression.TimelineInput
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		rel, err := loadRelationship(ctx, r.relationships, contactID)
		if err != nil {
			return err
		}
		in.LevelSwitches = rel.LevelSwitches

		if in.Interactions, err = r.interactions.ListByContact(ctx, contactID); err != nil {
			return err
		}

		instances, err := r.instances.ListByRelationship(ctx, rel.ID, nil)
		if err != nil {
			return err
		}
		var inst *domain.PathInstance
		for _, candidate := range instances {
			if rel.HasPathInstance(candidate.ID) {
				inst = candidate
			}
		}
		if inst == nil {
			inst = progression.LatestAtTier(instances, rel.CurrentLevel)
		}

		outreaches, err := r.outreaches.ListByContact(ctx, contactID)
		if err != nil {
			return err
		}
		for _, o := range outreaches {
			switch {
			case o.PathInstanceID == nil:
				in.Outreaches = append(in.Outreaches, o)
			case inst != nil && *o.PathInstanceID == inst.ID:
				in.Outreaches = append(in.Outreaches, o)
			}
		}

		if inst == nil {
			return nil
		}
		startedAt := inst.StartedAt
		in.PathStartedAt = &startedAt
		in.PathName = inst.PathID
		if path, ok := s.catalog.Paths.Get(inst.PathID); ok {
			in.PathName = path.Name
			in.Steps = path.Steps
		}
		steps, err := r.steps.ListByPathInstance(ctx, inst.ID)
		if err != nil {
			return err
		}
		for _, st := range steps {
			in.CompletedSteps = append(in.CompletedSteps, progression.CompletedStep{
				Index:       st.StepIndex,
				CompletedAt: st.CompletedAt,
			})
		}
		return nil
	})
	if err = classify("building timeline", err); err != nil {
		return nil, err
	}
	return progression.BuildTimeline(in, s.now()), nil
}
