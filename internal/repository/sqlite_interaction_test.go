package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/rapport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionRepo_CreateAndList(t *testing.T) {
	repo := NewSQLiteInteractionRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	older := testutil.NewTestInteraction("c1",
		testutil.WithInteractionDate(repoNow.Add(-72*time.Hour)),
		testutil.WithTopics("work", "travel"),
		testutil.WithWarmth(4),
		testutil.WithStrengthened(),
		testutil.WithNote("long lunch"))
	newer := testutil.NewTestInteraction("c1", testutil.WithInteractionDate(repoNow))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, testutil.NewTestInteraction("c2")))

	list, err := repo.ListByContact(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	got := list[1]
	assert.Equal(t, []string{"work", "travel"}, got.Topics)
	assert.Equal(t, 4, got.Warmth)
	assert.True(t, got.Strengthened)
	assert.Equal(t, "long lunch", got.Note)
	assert.Equal(t, "Cafe", got.Location)
	assert.Empty(t, list[0].Topics)
}

func TestInteractionRepo_NilTopicsStoredAsEmpty(t *testing.T) {
	repo := NewSQLiteInteractionRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	i := testutil.NewTestInteraction("c1")
	i.Topics = nil
	require.NoError(t, repo.Create(ctx, i))

	list, err := repo.ListByContact(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Topics)
	assert.Empty(t, list[0].Topics)
}

func TestInteractionRepo_WarmthOutOfRangeRejected(t *testing.T) {
	repo := NewSQLiteInteractionRepo(testutil.NewTestDB(t))

	err := repo.Create(context.Background(), testutil.NewTestInteraction("c1", testutil.WithWarmth(9)))
	assert.Error(t, err)
}

func TestInteractionRepo_Delete(t *testing.T) {
	repo := NewSQLiteInteractionRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	i := testutil.NewTestInteraction("c1")
	require.NoError(t, repo.Create(ctx, i))
	require.NoError(t, repo.Delete(ctx, i.ID))

	list, err := repo.ListByContact(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, repo.Delete(ctx, i.ID), ErrNotFound)
}
