package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestRelationshipRepo_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rel := testutil.NewTestRelationship("contact-1", testutil.WithCreatedAt(repoNow))
	require.NoError(t, repo.Create(ctx, rel))

	fetched, err := repo.GetByContactID(ctx, "contact-1")
	require.NoError(t, err)
	assert.Equal(t, rel.ID, fetched.ID)
	assert.Equal(t, 1, fetched.CurrentLevel)
	assert.Nil(t, fetched.CurrentPathID)
	assert.Nil(t, fetched.CurrentStepIndex)
	assert.Nil(t, fetched.CurrentPathInstanceID)
	assert.Empty(t, fetched.LevelSwitches)
	assert.True(t, repoNow.Equal(fetched.CreatedAt))
}

func TestRelationshipRepo_GetByContactID_NotFound(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))

	_, err := repo.GetByContactID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationshipRepo_CreateDuplicateContact(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship("dup")))
	err := repo.Create(ctx, testutil.NewTestRelationship("dup"))
	assert.Error(t, err)
}

func TestRelationshipRepo_CreateWithHistory(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rel := testutil.NewTestRelationship("hist",
		testutil.WithLevel(3),
		testutil.WithSwitches(
			domain.LevelSwitch{FromLevel: 1, ToLevel: 2, SwitchedAt: repoNow.Add(-48 * time.Hour)},
			domain.LevelSwitch{FromLevel: 2, ToLevel: 3, SwitchedAt: repoNow.Add(-24 * time.Hour)},
		))
	require.NoError(t, repo.Create(ctx, rel))

	fetched, err := repo.GetByContactID(ctx, "hist")
	require.NoError(t, err)
	require.Len(t, fetched.LevelSwitches, 2)
	assert.Equal(t, 2, fetched.LevelSwitches[0].ToLevel)
	assert.Equal(t, 3, fetched.LevelSwitches[1].ToLevel)
}

func TestRelationshipRepo_UpdateAndAppendSwitch(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRelationshipRepo(database)
	instRepo := NewSQLitePathInstanceRepo(database)
	ctx := context.Background()

	rel := testutil.NewTestRelationship("upd")
	require.NoError(t, repo.Create(ctx, rel))
	inst := testutil.NewTestPathInstance(rel.ID, "coffee", 1)
	require.NoError(t, instRepo.Create(ctx, inst))

	rel.BindPath(inst, repoNow)
	require.NoError(t, repo.Update(ctx, rel))

	fetched, err := repo.GetByContactID(ctx, "upd")
	require.NoError(t, err)
	require.NotNil(t, fetched.CurrentPathInstanceID)
	assert.Equal(t, inst.ID, *fetched.CurrentPathInstanceID)
	require.NotNil(t, fetched.CurrentStepIndex)
	assert.Equal(t, 0, *fetched.CurrentStepIndex)

	sw, err := rel.ApplyLevelSwitch(2, repoNow.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, rel))
	require.NoError(t, repo.AppendLevelSwitch(ctx, rel.ID, sw))

	fetched, err = repo.GetByContactID(ctx, "upd")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.CurrentLevel)
	assert.Nil(t, fetched.CurrentPathInstanceID)
	require.Len(t, fetched.LevelSwitches, 1)
	assert.Equal(t, domain.LevelSwitch{FromLevel: 1, ToLevel: 2, SwitchedAt: repoNow.Add(time.Hour)}, fetched.LevelSwitches[0])
}

func TestRelationshipRepo_AppendLevelSwitch_KeepsOrder(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rel := testutil.NewTestRelationship("order")
	require.NoError(t, repo.Create(ctx, rel))

	// Same timestamp on purpose; order must follow insertion, not time.
	for _, to := range []int{3, 1, 2} {
		require.NoError(t, repo.AppendLevelSwitch(ctx, rel.ID,
			domain.LevelSwitch{FromLevel: 1, ToLevel: to, SwitchedAt: repoNow}))
	}

	fetched, err := repo.GetByContactID(ctx, "order")
	require.NoError(t, err)
	require.Len(t, fetched.LevelSwitches, 3)
	assert.Equal(t, 3, fetched.LevelSwitches[0].ToLevel)
	assert.Equal(t, 1, fetched.LevelSwitches[1].ToLevel)
	assert.Equal(t, 2, fetched.LevelSwitches[2].ToLevel)
}

func TestRelationshipRepo_Update_NotFound(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))

	err := repo.Update(context.Background(), testutil.NewTestRelationship("ghost"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationshipRepo_List(t *testing.T) {
	repo := NewSQLiteRelationshipRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	b := testutil.NewTestRelationship("bob")
	a := testutil.NewTestRelationship("alice")
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.AppendLevelSwitch(ctx, b.ID, domain.LevelSwitch{FromLevel: 1, ToLevel: 2, SwitchedAt: repoNow}))

	rels, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "alice", rels[0].ContactID)
	assert.Equal(t, "bob", rels[1].ContactID)
	assert.Len(t, rels[1].LevelSwitches, 1)
}
