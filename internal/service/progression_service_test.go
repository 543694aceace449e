package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.progression.Enroll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentLevel)
	assert.True(t, testNow.Equal(first.CreatedAt))

	second, err := env.progression.Enroll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	events := env.events.Drain()
	require.Len(t, events, 1, "only the first enrollment is announced")
	assert.Equal(t, notify.EventEnrolled, events[0].Type)
	assert.Equal(t, false, env.observer.last().Fields["created"])
}

func TestEnroll_EmptyContact(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progression.Enroll(context.Background(), "")
	assert.ErrorIs(t, err, progression.ErrInvalidTarget)
}

func TestGetRelationship_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progression.GetRelationship(context.Background(), "nobody")
	assert.ErrorIs(t, err, progression.ErrNotFound)
}

func TestMissingRelationship_FailsClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for level := 1; level <= env.catalog.Levels.Max(); level++ {
		complete, err := env.progression.IsLevelComplete(ctx, "ghost", level)
		require.NoError(t, err)
		assert.False(t, complete, "level %d", level)
	}

	unlocked, err := env.progression.IsLevelUnlocked(ctx, "ghost", 1)
	require.NoError(t, err)
	assert.True(t, unlocked)
	unlocked, err = env.progression.IsLevelUnlocked(ctx, "ghost", 2)
	require.NoError(t, err)
	assert.False(t, unlocked)

	overview, err := env.progression.LevelOverview(ctx, "ghost")
	require.NoError(t, err)
	require.Len(t, overview, env.catalog.Levels.Max())
	for _, st := range overview {
		assert.False(t, st.Current)
		assert.Equal(t, st.Level.Level == 1, st.Unlocked)
	}
}

func TestIsLevelComplete_InvalidLevel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.progression.IsLevelComplete(ctx, "alice", 0)
	assert.ErrorIs(t, err, progression.ErrInvalidTarget)
	_, err = env.progression.IsLevelUnlocked(ctx, "alice", 42)
	assert.ErrorIs(t, err, progression.ErrInvalidTarget)
}

// Level 1 with no instances, a tier-1 instance ends, level 2 unlocks and the
// switch succeeds with one history entry and a cleared path binding.
func TestEndToEnd_LevelOneToTwo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.progression.Enroll(ctx, "alice")
	require.NoError(t, err)

	unlocked, err := env.progression.IsLevelUnlocked(ctx, "alice", 2)
	require.NoError(t, err)
	assert.False(t, unlocked)

	inst, err := env.progression.StartPath(ctx, "alice", "first-coffee")
	require.NoError(t, err)
	env.clock.Advance(24 * time.Hour)
	ended, err := env.progression.EndPath(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, inst.ID, ended.ID)
	assert.Equal(t, domain.PathEnded, ended.Status)

	complete, err := env.progression.IsLevelComplete(ctx, "alice", 1)
	require.NoError(t, err)
	assert.True(t, complete)
	unlocked, err = env.progression.IsLevelUnlocked(ctx, "alice", 2)
	require.NoError(t, err)
	assert.True(t, unlocked)

	env.clock.Advance(time.Hour)
	rel, err := env.progression.SwitchLevel(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rel.CurrentLevel)
	require.Len(t, rel.LevelSwitches, 1)
	assert.Equal(t, 1, rel.LevelSwitches[0].FromLevel)
	assert.Equal(t, 2, rel.LevelSwitches[0].ToLevel)
	assert.Nil(t, rel.CurrentPathInstanceID)
	assert.Nil(t, rel.CurrentPathID)
	assert.Nil(t, rel.CurrentStepIndex)

	stored, err := env.progression.GetRelationship(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentLevel)
	assert.Len(t, stored.LevelSwitches, 1)

	instances, err := env.progression.ListPathInstances(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, domain.PathEnded, instances[0].Status, "prior instances are untouched")
}

func TestSwitchLevel_ForwardGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "bob")
	require.NoError(t, err)

	_, err = env.progression.SwitchLevel(ctx, "bob", 2)
	require.Error(t, err)
	var rce *progression.RequiresCompletionError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, 1, rce.Level)
	assert.Equal(t, "Complete Level 1 first.", err.Error())

	rel, err := env.progression.GetRelationship(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, rel.CurrentLevel)
	assert.Empty(t, rel.LevelSwitches)

	assert.False(t, env.observer.last().Success)
}

func TestSwitchLevel_NoOpIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "carol")
	require.NoError(t, err)
	env.events.Drain()

	for i := 0; i < 3; i++ {
		rel, err := env.progression.SwitchLevel(ctx, "carol", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, rel.CurrentLevel)
		assert.Empty(t, rel.LevelSwitches)
	}
	assert.Empty(t, env.events.Drain())
}

func TestSwitchLevel_BackwardIsFree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.finishTier1(t, "dave")

	_, err := env.progression.SwitchLevel(ctx, "dave", 2)
	require.NoError(t, err)

	// Level 2 is incomplete, going back still works.
	rel, err := env.progression.SwitchLevel(ctx, "dave", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rel.CurrentLevel)
	require.Len(t, rel.LevelSwitches, 2)
	assert.Equal(t, domain.LevelSwitch{FromLevel: 2, ToLevel: 1, SwitchedAt: testNow}, rel.LevelSwitches[1])
}

func TestSwitchLevel_InvalidTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "erin")
	require.NoError(t, err)

	for _, target := range []int{0, -1, 99} {
		_, err := env.progression.SwitchLevel(ctx, "erin", target)
		assert.ErrorIs(t, err, progression.ErrInvalidTarget, "target %d", target)
	}
}

func TestSwitchLevel_UnknownContact(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progression.SwitchLevel(context.Background(), "nobody", 1)
	assert.ErrorIs(t, err, progression.ErrNotFound)
}

func TestSwitchLevel_JumpCheckedAgainstCurrentOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.finishTier1(t, "frank")

	rel, err := env.progression.SwitchLevel(ctx, "frank", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, rel.CurrentLevel)
}

func TestSwitchLevel_StrictGate(t *testing.T) {
	env := newTestEnv(t, WithStrictGate(true))
	ctx := context.Background()
	env.finishTier1(t, "gina")

	_, err := env.progression.SwitchLevel(ctx, "gina", 4)
	var rce *progression.RequiresCompletionError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, 2, rce.Level)

	rel, err := env.progression.SwitchLevel(ctx, "gina", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rel.CurrentLevel)
}

func TestSwitchLevel_PublishesChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.finishTier1(t, "hank")
	env.events.Drain()

	_, err := env.progression.SwitchLevel(ctx, "hank", 2)
	require.NoError(t, err)

	events := env.events.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventLevelSwitched, events[0].Type)
	assert.Equal(t, 1, events[0].FromLevel)
	assert.Equal(t, 2, events[0].Level)

	last := env.observer.last()
	assert.Equal(t, "switch-level", last.Name)
	assert.True(t, last.Success)
	assert.Equal(t, true, last.Fields["changed"])
}

func TestStartPath_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "ivy")
	require.NoError(t, err)

	_, err = env.progression.StartPath(ctx, "ivy", "no-such-path")
	assert.ErrorIs(t, err, progression.ErrInvalidTarget)

	_, err = env.progression.StartPath(ctx, "ivy", "group-activity")
	assert.ErrorIs(t, err, progression.ErrInvalidTarget, "tier 2 path at level 1")

	inst, err := env.progression.StartPath(ctx, "ivy", "first-coffee")
	require.NoError(t, err)
	assert.Equal(t, domain.PathActive, inst.Status)

	_, err = env.progression.StartPath(ctx, "ivy", "shared-interest")
	var ape *progression.ActivePathError
	require.True(t, errors.As(err, &ape))
	assert.Equal(t, inst.ID, ape.InstanceID)
	assert.ErrorIs(t, err, progression.ErrActivePath)

	rel, err := env.progression.GetRelationship(ctx, "ivy")
	require.NoError(t, err)
	require.NotNil(t, rel.CurrentPathInstanceID)
	assert.Equal(t, inst.ID, *rel.CurrentPathInstanceID)
	assert.Equal(t, "first-coffee", *rel.CurrentPathID)
	assert.Equal(t, 0, *rel.CurrentStepIndex)
}

func TestCompleteStep_AdvancesAndEnds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "jack")
	require.NoError(t, err)
	inst, err := env.progression.StartPath(ctx, "jack", "first-coffee")
	require.NoError(t, err)

	// Out of order: step 1 first leaves the cursor on step 0.
	progress, err := env.progression.CompleteStep(ctx, "jack", 1)
	require.NoError(t, err)
	assert.False(t, progress.PathEnded)
	assert.Equal(t, 0, *progress.Relationship.CurrentStepIndex)

	progress, err = env.progression.CompleteStep(ctx, "jack", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, *progress.Relationship.CurrentStepIndex)

	// Repeating a step changes nothing.
	progress, err = env.progression.CompleteStep(ctx, "jack", 0)
	require.NoError(t, err)
	assert.Len(t, progress.Steps, 2)
	assert.Equal(t, 2, *progress.Relationship.CurrentStepIndex)

	progress, err = env.progression.CompleteStep(ctx, "jack", 2)
	require.NoError(t, err)
	assert.True(t, progress.PathEnded)
	assert.Equal(t, domain.PathEnded, progress.Instance.Status)
	assert.Nil(t, progress.Relationship.CurrentStepIndex)
	require.NotNil(t, progress.Relationship.CurrentPathInstanceID)
	assert.Equal(t, inst.ID, *progress.Relationship.CurrentPathInstanceID)

	complete, err := env.progression.IsLevelComplete(ctx, "jack", 1)
	require.NoError(t, err)
	assert.True(t, complete)

	_, err = env.progression.CompleteStep(ctx, "jack", 0)
	assert.ErrorIs(t, err, progression.ErrNotFound, "ended path accepts no more steps")
}

func TestCompleteStep_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "kim")
	require.NoError(t, err)

	_, err = env.progression.CompleteStep(ctx, "kim", 0)
	assert.ErrorIs(t, err, progression.ErrNotFound, "no current path")

	_, err = env.progression.StartPath(ctx, "kim", "shared-interest")
	require.NoError(t, err)
	_, err = env.progression.CompleteStep(ctx, "kim", 5)
	assert.ErrorIs(t, err, progression.ErrInvalidTarget)
	_, err = env.progression.CompleteStep(ctx, "kim", -1)
	assert.ErrorIs(t, err, progression.ErrInvalidTarget)
}

func TestSkipPath_SatisfiesGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "lee")
	require.NoError(t, err)
	_, err = env.progression.StartPath(ctx, "lee", "first-coffee")
	require.NoError(t, err)

	inst, err := env.progression.SkipPath(ctx, "lee")
	require.NoError(t, err)
	assert.Equal(t, domain.PathSkipped, inst.Status)
	require.NotNil(t, inst.EndedAt)

	_, err = env.progression.SkipPath(ctx, "lee")
	assert.ErrorIs(t, err, progression.ErrNotFound)

	_, err = env.progression.SwitchLevel(ctx, "lee", 2)
	require.NoError(t, err)
}

func TestEndPath_LeftoverFromEarlierLevel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.finishTier1(t, "max")
	_, err := env.progression.SwitchLevel(ctx, "max", 2)
	require.NoError(t, err)
	_, err = env.progression.StartPath(ctx, "max", "group-activity")
	require.NoError(t, err)

	// Going back clears the binding but leaves the tier-2 instance active.
	_, err = env.progression.SwitchLevel(ctx, "max", 1)
	require.NoError(t, err)
	_, err = env.progression.StartPath(ctx, "max", "first-coffee")
	assert.ErrorIs(t, err, progression.ErrActivePath)

	leftover, err := env.progression.EndPath(ctx, "max")
	require.NoError(t, err)
	assert.Equal(t, "group-activity", leftover.PathID)

	_, err = env.progression.StartPath(ctx, "max", "first-coffee")
	require.NoError(t, err)
}

func TestTimeline_MergesSources(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.progression.Enroll(ctx, "nina")
	require.NoError(t, err)

	inst, err := env.progression.StartPath(ctx, "nina", "first-coffee")
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.progression.CompleteStep(ctx, "nina", 0)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	idx := 1
	linked := &domain.Outreach{ContactID: "nina", Title: "Ask about coffee", DueDate: testNow.Add(48 * time.Hour),
		PathInstanceID: &inst.ID, StepIndex: &idx}
	require.NoError(t, env.outreach.Schedule(ctx, linked))

	env.clock.Advance(time.Hour)
	_, err = env.outreach.Complete(ctx, linked.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	require.NoError(t, env.interactions.Log(ctx, &domain.Interaction{ContactID: "nina", Location: "Park", Warmth: 4}))

	events, err := env.progression.Timeline(ctx, "nina")
	require.NoError(t, err)

	kinds := make([]progression.EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []progression.EventKind{
		progression.KindInteraction,
		progression.KindOutreachCompleted,
		progression.KindStepCompleted,
		progression.KindPathStarted,
	}, kinds, "step 1 is represented by its outreach only")

	assert.Equal(t, "Suggest a coffee", events[1].Payload.StepName)
	assert.Equal(t, domain.DisplayCompleted, events[1].Payload.DisplayStatus)
	assert.Equal(t, "Send a follow-up message", events[2].Payload.StepName)
	assert.False(t, events[2].Payload.Approximate)
	assert.Equal(t, "First Coffee", events[3].Payload.PathName)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.After(events[i-1].Date))
	}
}

func TestTimeline_IncludesLevelSwitches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.finishTier1(t, "omar")
	env.clock.Advance(time.Hour)
	_, err := env.progression.SwitchLevel(ctx, "omar", 2)
	require.NoError(t, err)

	events, err := env.progression.Timeline(ctx, "omar")
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, progression.KindLevelSwitched, events[0].Kind)
	assert.Equal(t, 2, events[0].Payload.ToLevel)
}

func TestTimeline_UnknownContact(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progression.Timeline(context.Background(), "nobody")
	assert.ErrorIs(t, err, progression.ErrNotFound)
}

func TestTimeline_OutreachDueTodayInLocalZone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	east := time.FixedZone("UTC+3", 3*60*60)
	// Midday local is still the previous evening's date for due midnight in UTC.
	env.clock.now = time.Date(2025, 6, 10, 12, 0, 0, 0, east)

	_, err := env.progression.Enroll(ctx, "lena")
	require.NoError(t, err)
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, east)
	o := &domain.Outreach{ContactID: "lena", Title: "Check in", DueDate: due}
	require.NoError(t, env.outreach.Schedule(ctx, o))

	events, err := env.progression.Timeline(ctx, "lena")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, progression.KindOutreachScheduled, events[0].Kind)
	assert.Equal(t, domain.DisplayDueToday, events[0].Payload.DisplayStatus)

	list, err := env.outreach.List(ctx, "lena")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, events[0].Payload.DisplayStatus,
		progression.ClassifyOutreach(list[0].Status, list[0].DueDate, env.clock.Now()))
}

func TestDefaultClock_IsLocal(t *testing.T) {
	c := newCore(nil, nil)
	assert.Equal(t, time.Local, c.now().Location())
}
