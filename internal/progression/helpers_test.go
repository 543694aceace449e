package progression

import (
	"testing"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *domain.LevelCatalog {
	t.Helper()
	c, err := domain.NewLevelCatalog([]domain.Level{
		{Level: 1, Label: "Acquaintance", Icon: domain.IconSeedling},
		{Level: 2, Label: "Friend", Icon: domain.IconHandshake},
		{Level: 3, Label: "Close friend", Icon: domain.IconHeart},
		{Level: 4, Label: "Inner circle", Icon: domain.IconCrown},
	})
	require.NoError(t, err)
	return c
}

func inst(tier int, status domain.PathStatus) *domain.PathInstance {
	return &domain.PathInstance{ID: "inst", Tier: tier, Status: status, StartedAt: testNow}
}

func completeSet(levels ...int) CompleteFunc {
	set := make(map[int]bool, len(levels))
	for _, l := range levels {
		set[l] = true
	}
	return func(level int) bool { return set[level] }
}
