package progression

import "github.com/alexanderramin/rapport/internal/domain"

// CompleteFunc answers "is this level complete?" for one contact.
type CompleteFunc func(level int) bool

// LevelUnlocked is true for level 1, for any level already reached, and for
// the level directly after a completed one.
func LevelUnlocked(level, currentLevel int, complete CompleteFunc) bool {
	if level == 1 {
		return true
	}
	if currentLevel >= level {
		return true
	}
	return complete(level - 1)
}

// LevelState is the derived per-level view rendered by presentation layers.
type LevelState struct {
	Level    domain.Level
	Unlocked bool
	Complete bool
	Current  bool
}

// Overview derives a LevelState for every catalog level.
func Overview(levels *domain.LevelCatalog, currentLevel int, complete CompleteFunc) []LevelState {
	all := levels.Levels()
	out := make([]LevelState, 0, len(all))
	for _, l := range all {
		out = append(out, LevelState{
			Level:    l,
			Unlocked: LevelUnlocked(l.Level, currentLevel, complete),
			Complete: complete(l.Level),
			Current:  l.Level == currentLevel,
		})
	}
	return out
}
