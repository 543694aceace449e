package progression

import (
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
)

// EventKind tags a timeline entry. Besides the interaction, path, step and
// outreach kinds, KindLevelSwitched marks entries built from the level
// history; consumers switching on kind need a case or default for it.
type EventKind string

const (
	KindInteraction       EventKind = "interaction"
	KindPathStarted       EventKind = "path_started"
	KindStepCompleted     EventKind = "step_completed"
	KindOutreachScheduled EventKind = "outreach_scheduled"
	KindOutreachCompleted EventKind = "outreach_completed"
	KindLevelSwitched     EventKind = "level_switched"
)

const backfillInterval = 7 * 24 * time.Hour

// CompletedStep is a done step of the timeline's path. CompletedAt is nil
// for legacy rows stored without a timestamp.
type CompletedStep struct {
	Index       int
	CompletedAt *time.Time
}

// TimelineInput is a snapshot of everything the timeline merges.
type TimelineInput struct {
	Interactions   []*domain.Interaction
	LevelSwitches  []domain.LevelSwitch
	PathStartedAt  *time.Time
	PathName       string
	Steps          []domain.Step
	CompletedSteps []CompletedStep
	Outreaches     []*domain.Outreach
}

// Payload carries the kind-specific details of a TimelineEvent. Only the
// fields relevant to the event kind are set.
type Payload struct {
	Title         string
	PathName      string
	StepIndex     *int
	StepName      string
	DisplayStatus domain.OutreachDisplayStatus
	Approximate   bool
	FromLevel     int
	ToLevel       int
	Interaction   *domain.Interaction
	Outreach      *domain.Outreach
}

type TimelineEvent struct {
	ID      string
	Date    time.Time
	Kind    EventKind
	Payload Payload
}

// BuildTimeline merges interactions, level switches, the path start, linked
// outreaches and completed steps into one list, most recent first. Events
// with equal dates keep their insertion order.
func BuildTimeline(in TimelineInput, now time.Time) []TimelineEvent {
	events := make([]TimelineEvent, 0,
		len(in.Interactions)+len(in.LevelSwitches)+len(in.Outreaches)+len(in.CompletedSteps)+1)

	for _, it := range in.Interactions {
		events = append(events, TimelineEvent{
			ID:   "interaction-" + it.ID,
			Date: it.Date,
			Kind: KindInteraction,
			Payload: Payload{
				Title:       it.Location,
				Interaction: it,
			},
		})
	}

	for i, sw := range in.LevelSwitches {
		events = append(events, TimelineEvent{
			ID:   fmt.Sprintf("level-switch-%d", i),
			Date: sw.SwitchedAt,
			Kind: KindLevelSwitched,
			Payload: Payload{
				Title:     fmt.Sprintf("Level %d → %d", sw.FromLevel, sw.ToLevel),
				FromLevel: sw.FromLevel,
				ToLevel:   sw.ToLevel,
			},
		})
	}

	if in.PathStartedAt != nil {
		events = append(events, TimelineEvent{
			ID:   "path-started",
			Date: *in.PathStartedAt,
			Kind: KindPathStarted,
			Payload: Payload{
				Title:    in.PathName,
				PathName: in.PathName,
			},
		})
	}

	// Step indexes already represented by a completed outreach.
	covered := make(map[int]bool)
	for _, o := range in.Outreaches {
		ev := TimelineEvent{
			ID: "outreach-" + o.ID,
			Payload: Payload{
				Title:         o.Title,
				DisplayStatus: ClassifyOutreach(o.Status, o.DueDate, now),
				Outreach:      o,
			},
		}
		if o.StepIndex != nil {
			idx := *o.StepIndex
			ev.Payload.StepIndex = &idx
			ev.Payload.StepName = stepName(in.Steps, idx)
		}
		if o.Status == domain.OutreachCompleted {
			ev.Kind = KindOutreachCompleted
			ev.Date = firstNonZero(o.UpdatedAt, o.DueDate)
			if o.StepIndex != nil {
				covered[*o.StepIndex] = true
			}
		} else {
			ev.Kind = KindOutreachScheduled
			ev.Date = firstNonZero(o.CreatedAt, o.DueDate)
		}
		events = append(events, ev)
	}

	n := len(in.CompletedSteps)
	for i, cs := range in.CompletedSteps {
		if covered[cs.Index] {
			continue
		}
		idx := cs.Index
		ev := TimelineEvent{
			ID:   fmt.Sprintf("step-%d", cs.Index),
			Kind: KindStepCompleted,
			Payload: Payload{
				Title:     stepName(in.Steps, idx),
				PathName:  in.PathName,
				StepIndex: &idx,
				StepName:  stepName(in.Steps, idx),
			},
		}
		if cs.CompletedAt != nil {
			ev.Date = *cs.CompletedAt
		} else {
			ev.Date = now.Add(-time.Duration(n-i) * backfillInterval)
			ev.Payload.Approximate = true
		}
		events = append(events, ev)
	}

	slices.SortStableFunc(events, func(a, b TimelineEvent) int {
		return b.Date.Compare(a.Date)
	})
	return events
}

func stepName(steps []domain.Step, index int) string {
	for _, s := range steps {
		if s.Index == index {
			return s.Name
		}
	}
	return ""
}

func firstNonZero(ts ...time.Time) time.Time {
	for _, t := range ts {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
