package domain

import (
	"fmt"
	"sort"
)

type Step struct {
	ID    string
	Name  string
	Index int
}

type Path struct {
	ID          string
	Tier        int
	Name        string
	Description string
	Steps       []Step
}

// ValidStep reports whether index addresses one of the path's steps.
func (p *Path) ValidStep(index int) bool {
	return index >= 0 && index < len(p.Steps)
}

// StepName returns the name of the step at index, or "" when out of range.
func (p *Path) StepName(index int) string {
	if !p.ValidStep(index) {
		return ""
	}
	return p.Steps[index].Name
}

// PathCatalog indexes development paths by ID and by tier.
type PathCatalog struct {
	byID   map[string]*Path
	byTier map[int][]*Path
}

// NewPathCatalog checks that every path has a unique ID, a tier known to the
// level catalog, and steps indexed 0..n-1 in order.
func NewPathCatalog(paths []Path, levels *LevelCatalog) (*PathCatalog, error) {
	c := &PathCatalog{
		byID:   make(map[string]*Path, len(paths)),
		byTier: make(map[int][]*Path),
	}
	for i := range paths {
		p := paths[i]
		if p.ID == "" {
			return nil, fmt.Errorf("path at position %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate path id %q", p.ID)
		}
		if !levels.Contains(p.Tier) {
			return nil, fmt.Errorf("path %q references unknown tier %d", p.ID, p.Tier)
		}
		for j, s := range p.Steps {
			if s.Index != j {
				return nil, fmt.Errorf("path %q step %q has index %d, want %d", p.ID, s.ID, s.Index, j)
			}
		}
		c.byID[p.ID] = &p
		c.byTier[p.Tier] = append(c.byTier[p.Tier], &p)
	}
	for tier := range c.byTier {
		ps := c.byTier[tier]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	}
	return c, nil
}

func (c *PathCatalog) Get(id string) (*Path, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// ForTier returns the candidate paths for a tier, sorted by name. A tier may
// have none.
func (c *PathCatalog) ForTier(tier int) []*Path {
	return c.byTier[tier]
}
