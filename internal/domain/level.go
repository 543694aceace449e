package domain

import (
	"fmt"
	"sort"
)

// Icon is the closed set of level icons. Anything outside this set is
// rejected when a catalog is built.
type Icon string

const (
	IconSeedling  Icon = "seedling"
	IconHandshake Icon = "handshake"
	IconUsers     Icon = "users"
	IconHeart     Icon = "heart"
	IconStar      Icon = "star"
	IconSparkles  Icon = "sparkles"
	IconCrown     Icon = "crown"
)

var iconGlyphs = map[Icon]string{
	IconSeedling:  "🌱",
	IconHandshake: "🤝",
	IconUsers:     "👥",
	IconHeart:     "❤",
	IconStar:      "★",
	IconSparkles:  "✨",
	IconCrown:     "♛",
}

// ParseIcon validates a raw icon name.
func ParseIcon(s string) (Icon, error) {
	icon := Icon(s)
	if _, ok := iconGlyphs[icon]; !ok {
		return "", fmt.Errorf("unknown icon %q", s)
	}
	return icon, nil
}

// Glyph returns the terminal glyph for the icon.
func (i Icon) Glyph() string {
	if g, ok := iconGlyphs[i]; ok {
		return g
	}
	return "•"
}

type Level struct {
	Level       int
	Label       string
	Icon        Icon
	Description string
}

// LevelCatalog is an immutable, ordered list of levels.
type LevelCatalog struct {
	levels []Level
	byNum  map[int]Level
}

// NewLevelCatalog sorts levels by number and checks that they form the
// contiguous sequence 1..N with no duplicates.
func NewLevelCatalog(levels []Level) (*LevelCatalog, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("level catalog is empty")
	}
	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	byNum := make(map[int]Level, len(sorted))
	for i, l := range sorted {
		if l.Level != i+1 {
			return nil, fmt.Errorf("levels must be numbered 1..%d without gaps, found %d at position %d", len(sorted), l.Level, i+1)
		}
		if l.Label == "" {
			return nil, fmt.Errorf("level %d has no label", l.Level)
		}
		byNum[l.Level] = l
	}
	return &LevelCatalog{levels: sorted, byNum: byNum}, nil
}

// Levels returns a copy of the levels in ascending order.
func (c *LevelCatalog) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

func (c *LevelCatalog) Get(level int) (Level, bool) {
	l, ok := c.byNum[level]
	return l, ok
}

func (c *LevelCatalog) Contains(level int) bool {
	_, ok := c.byNum[level]
	return ok
}

// Max returns the highest level number.
func (c *LevelCatalog) Max() int {
	return c.levels[len(c.levels)-1].Level
}
