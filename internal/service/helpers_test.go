package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/repository"
	"github.com/alexanderramin/rapport/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// capturingObserver records every use-case event.
type capturingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *capturingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *capturingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type testEnv struct {
	db           *sql.DB
	catalog      *catalog.Catalog
	clock        *testClock
	observer     *capturingObserver
	events       *notify.Recorder
	progression  ProgressionService
	outreach     OutreachService
	interactions InteractionService
}

func newTestEnv(t *testing.T, extra ...Option) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newTestEnvWithUoW(t, database, testutil.NewTestUoW(database), extra...)
}

func newTestEnvWithUoW(t *testing.T, database *sql.DB, uow db.UnitOfWork, extra ...Option) *testEnv {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	env := &testEnv{
		db:       database,
		catalog:  cat,
		clock:    &testClock{now: testNow},
		observer: &capturingObserver{},
		events:   notify.NewRecorder(64),
	}
	opts := append([]Option{
		WithClock(env.clock.Now),
		WithObserver(env.observer),
		WithPublisher(env.events),
	}, extra...)

	env.progression = NewProgressionService(cat,
		repository.NewSQLiteRelationshipRepo(database),
		repository.NewSQLitePathInstanceRepo(database),
		uow, opts...)
	env.outreach = NewOutreachService(cat, repository.NewSQLiteOutreachRepo(database), uow, opts...)
	env.interactions = NewInteractionService(repository.NewSQLiteInteractionRepo(database), uow, opts...)
	return env
}

// finishTier1 enrolls contactID and ends a tier-1 path so level 2 unlocks.
func (e *testEnv) finishTier1(t *testing.T, contactID string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.progression.Enroll(ctx, contactID)
	require.NoError(t, err)
	_, err = e.progression.StartPath(ctx, contactID, "shared-interest")
	require.NoError(t, err)
	_, err = e.progression.EndPath(ctx, contactID)
	require.NoError(t, err)
}
