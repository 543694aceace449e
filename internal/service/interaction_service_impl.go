package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/repository"
	"github.com/google/uuid"
)

type interactionService struct {
	core
	interactions repository.InteractionRepo
}

func NewInteractionService(interactions repository.InteractionRepo, uow db.UnitOfWork, opts ...Option) InteractionService {
	return &interactionService{core: newCore(uow, opts), interactions: interactions}
}

func (s *interactionService) Log(ctx context.Context, i *domain.Interaction) (err error) {
	fields := map[string]any{"contact_id": i.ContactID}
	done := s.track(ctx, "log-interaction", fields)
	defer func() { done(err) }()

	if i.ContactID == "" {
		return fmt.Errorf("contact id is required: %w", progression.ErrInvalidTarget)
	}
	if i.Warmth == 0 {
		i.Warmth = 3
	}
	if err = i.ValidateWarmth(); err != nil {
		return fmt.Errorf("%v: %w", err, progression.ErrInvalidTarget)
	}

	now := s.now()
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Date.IsZero() {
		i.Date = now
	}
	i.Location = strings.TrimSpace(i.Location)
	i.CreatedAt = now

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteInteractionRepo(tx).Create(ctx, i)
	})
	if err = classify("logging interaction", err); err != nil {
		return err
	}
	fields["interaction_id"] = i.ID

	s.publish(ctx, notify.Event{Type: notify.EventInteractionLogged, ContactID: i.ContactID, At: i.Date})
	return nil
}

func (s *interactionService) List(ctx context.Context, contactID string) ([]*domain.Interaction, error) {
	out, err := s.interactions.ListByContact(ctx, contactID)
	return out, classify("listing interactions", err)
}

func (s *interactionService) Delete(ctx context.Context, id string) error {
	return classify("deleting interaction", s.interactions.Delete(ctx, id))
}
