package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/repository"
	"github.com/google/uuid"
)

type outreachService struct {
	core
	catalog    *catalog.Catalog
	outreaches repository.OutreachRepo
}

func NewOutreachService(cat *catalog.Catalog, outreaches repository.OutreachRepo, uow db.UnitOfWork, opts ...Option) OutreachService {
	return &outreachService{core: newCore(uow, opts), catalog: cat, outreaches: outreaches}
}

// Schedule stores a pending outreach. A step link must point at a step of a
// path instance owned by the same contact.
func (s *outreachService) Schedule(ctx context.Context, o *domain.Outreach) (err error) {
	fields := map[string]any{"contact_id": o.ContactID, "linked": o.IsLinkedToStep()}
	done := s.track(ctx, "schedule-outreach", fields)
	defer func() { done(err) }()

	o.Title = strings.TrimSpace(o.Title)
	switch {
	case o.ContactID == "":
		return fmt.Errorf("contact id is required: %w", progression.ErrInvalidTarget)
	case o.Title == "":
		return fmt.Errorf("outreach title is required: %w", progression.ErrInvalidTarget)
	case o.DueDate.IsZero():
		return fmt.Errorf("outreach due date is required: %w", progression.ErrInvalidTarget)
	case (o.PathInstanceID == nil) != (o.StepIndex == nil):
		return fmt.Errorf("a step link needs both path instance and step index: %w", progression.ErrInvalidTarget)
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := s.now()
	o.Status = domain.OutreachPending
	o.CreatedAt = now
	o.UpdatedAt = now

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		if o.IsLinkedToStep() {
			if err := s.checkStepLink(ctx, r, o); err != nil {
				return err
			}
		}
		return r.outreaches.Create(ctx, o)
	})
	if err = classify("scheduling outreach", err); err != nil {
		return err
	}
	fields["outreach_id"] = o.ID

	s.publish(ctx, notify.Event{
		Type:           notify.EventOutreachScheduled,
		ContactID:      o.ContactID,
		OutreachID:     o.ID,
		PathInstanceID: derefStr(o.PathInstanceID),
		StepIndex:      o.StepIndex,
		At:             now,
	})
	return nil
}

func (s *outreachService) checkStepLink(ctx context.Context, r txRepos, o *domain.Outreach) error {
	rel, err := loadRelationship(ctx, r.relationships, o.ContactID)
	if err != nil {
		return err
	}
	inst, err := r.instances.GetByID(ctx, *o.PathInstanceID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("path instance %s: %w", *o.PathInstanceID, progression.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if inst.ContactRelationshipID != rel.ID {
		return fmt.Errorf("path instance %s belongs to another contact: %w", inst.ID, progression.ErrInvalidTarget)
	}
	path, ok := s.catalog.Paths.Get(inst.PathID)
	if !ok || !path.ValidStep(*o.StepIndex) {
		return fmt.Errorf("step %d of path %q: %w", *o.StepIndex, inst.PathID, progression.ErrInvalidTarget)
	}
	return nil
}

func (s *outreachService) Complete(ctx context.Context, id string) (o *domain.Outreach, err error) {
	fields := map[string]any{"outreach_id": id}
	done := s.track(ctx, "complete-outreach", fields)
	defer func() { done(err) }()

	var (
		changed  bool
		progress *StepProgress
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		var err error
		o, err = r.outreaches.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("outreach %s: %w", id, progression.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if o.Status == domain.OutreachCompleted {
			return nil
		}

		now := s.now()
		if err := o.Complete(now); err != nil {
			return err
		}
		if err := r.outreaches.Update(ctx, o); err != nil {
			return err
		}
		changed = true

		if !o.IsLinkedToStep() {
			return nil
		}
		rel, err := loadRelationship(ctx, r.relationships, o.ContactID)
		if err != nil {
			return err
		}
		inst, err := r.instances.GetByID(ctx, *o.PathInstanceID)
		if err != nil {
			return err
		}
		progress, err = completeStep(ctx, r, s.catalog, rel, inst, *o.StepIndex, now)
		return err
	})
	if err = classify("completing outreach", err); err != nil {
		return nil, err
	}
	fields["changed"] = changed
	if !changed {
		return o, nil
	}

	events := []notify.Event{{
		Type:           notify.EventOutreachCompleted,
		ContactID:      o.ContactID,
		OutreachID:     o.ID,
		PathInstanceID: derefStr(o.PathInstanceID),
		StepIndex:      o.StepIndex,
		At:             o.UpdatedAt,
	}}
	if progress != nil && progress.PathEnded {
		events = append(events, notify.Event{
			Type:           notify.EventPathEnded,
			ContactID:      o.ContactID,
			Level:          progress.Instance.Tier,
			PathID:         progress.Instance.PathID,
			PathInstanceID: progress.Instance.ID,
			At:             o.UpdatedAt,
		})
	}
	s.publish(ctx, events...)
	return o, nil
}

func (s *outreachService) List(ctx context.Context, contactID string) ([]*domain.Outreach, error) {
	out, err := s.outreaches.ListByContact(ctx, contactID)
	return out, classify("listing outreaches", err)
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
