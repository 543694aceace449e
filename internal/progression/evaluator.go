package progression

import "github.com/alexanderramin/rapport/internal/domain"

// LevelComplete reports whether any instance at the given tier has ended or
// been skipped.
func LevelComplete(instances []*domain.PathInstance, level int) bool {
	for _, inst := range instances {
		if inst.Tier == level && inst.IsTerminal() {
			return true
		}
	}
	return false
}

// CompletionSet precomputes LevelComplete for every tier present in
// instances so repeated unlock checks stay cheap.
func CompletionSet(instances []*domain.PathInstance) map[int]bool {
	set := make(map[int]bool)
	for _, inst := range instances {
		if inst.IsTerminal() {
			set[inst.Tier] = true
		}
	}
	return set
}

// ActiveInstance returns the single active instance, or nil.
func ActiveInstance(instances []*domain.PathInstance) *domain.PathInstance {
	for _, inst := range instances {
		if inst.Status == domain.PathActive {
			return inst
		}
	}
	return nil
}

// LatestAtTier returns the most recently started instance at tier, or nil.
func LatestAtTier(instances []*domain.PathInstance, tier int) *domain.PathInstance {
	var latest *domain.PathInstance
	for _, inst := range instances {
		if inst.Tier != tier {
			continue
		}
		if latest == nil || inst.StartedAt.After(latest.StartedAt) {
			latest = inst
		}
	}
	return latest
}
