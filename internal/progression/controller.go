package progression

import (
	"fmt"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
)

// SwitchOptions tunes the level gate.
type SwitchOptions struct {
	// StrictGate checks every level in [current, target) instead of only the
	// current level when advancing.
	StrictGate bool
}

// SwitchDecision is the outcome of DecideSwitch. When Changed is false the
// request was a no-op and State is the unchanged input.
type SwitchDecision struct {
	State   *domain.ContactRelationship
	Switch  domain.LevelSwitch
	Changed bool
}

// ValidateTarget rejects levels that cannot be addressed at all.
func ValidateTarget(levels *domain.LevelCatalog, target int) error {
	if target < 1 {
		return fmt.Errorf("level %d: %w", target, ErrInvalidTarget)
	}
	if levels != nil && !levels.Contains(target) {
		return fmt.Errorf("level %d is not in the catalog: %w", target, ErrInvalidTarget)
	}
	return nil
}

// DecideSwitch applies the level transition rules to a snapshot of rel.
// The input is never modified; on success a cloned, updated state is
// returned.
func DecideSwitch(rel *domain.ContactRelationship, target int, complete CompleteFunc, opts SwitchOptions, now time.Time) (SwitchDecision, error) {
	if target < 1 {
		return SwitchDecision{}, fmt.Errorf("level %d: %w", target, ErrInvalidTarget)
	}
	current := rel.CurrentLevel

	if target == current {
		return SwitchDecision{State: rel}, nil
	}

	if target > current && target != 1 {
		if opts.StrictGate {
			for l := current; l < target; l++ {
				if !complete(l) {
					return SwitchDecision{}, &RequiresCompletionError{Level: l}
				}
			}
		} else if !complete(current) {
			return SwitchDecision{}, &RequiresCompletionError{Level: current}
		}
	}

	next := rel.Clone()
	sw, err := next.ApplyLevelSwitch(target, now)
	if err != nil {
		return SwitchDecision{}, err
	}
	return SwitchDecision{State: next, Switch: sw, Changed: true}, nil
}
