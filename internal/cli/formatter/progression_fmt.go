package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
)

// FormatRelationshipList renders one row per enrolled contact.
func FormatRelationshipList(rels []*domain.ContactRelationship, levels *domain.LevelCatalog, now time.Time) string {
	if len(rels) == 0 {
		return RenderBox("Contacts", Dim("No contacts enrolled yet. Run `rapport contact enroll <id>`."))
	}
	headers := []string{"CONTACT", "LEVEL", "PATH", "STEP", "UPDATED"}
	rows := make([][]string, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, []string{
			Bold(r.ContactID),
			levelLabel(levels, r.CurrentLevel),
			valueOr(r.CurrentPathID, "--"),
			stepLabel(r.CurrentStepIndex),
			RelativeDateFrom(r.UpdatedAt, now),
		})
	}
	return RenderBox("Contacts", RenderTable(headers, rows))
}

// FormatRelationship renders a relationship card with its switch history.
func FormatRelationship(r *domain.ContactRelationship, levels *domain.LevelCatalog, paths *domain.PathCatalog, now time.Time) string {
	var b strings.Builder
	b.WriteString(Bold(r.ContactID) + "\n\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("LEVEL "), levelLabel(levels, r.CurrentLevel)))

	pathName := "--"
	if r.CurrentPathID != nil {
		pathName = *r.CurrentPathID
		if p, ok := paths.Get(*r.CurrentPathID); ok {
			pathName = p.Name
			if r.CurrentStepIndex != nil {
				pathName += Dim(" · next: ") + p.StepName(*r.CurrentStepIndex)
			}
		}
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("PATH  "), pathName))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("SINCE "), HumanDateFrom(r.CreatedAt, now)))

	if len(r.LevelSwitches) > 0 {
		b.WriteString("\n" + Header("History") + "\n")
		for i := len(r.LevelSwitches) - 1; i >= 0; i-- {
			sw := r.LevelSwitches[i]
			b.WriteString(fmt.Sprintf("%s  %d → %d\n", Dim(HumanDateFrom(sw.SwitchedAt, now)), sw.FromLevel, sw.ToLevel))
		}
	}
	return RenderBox("Relationship", strings.TrimRight(b.String(), "\n"))
}

// FormatLevelOverview renders every level with its lock and completion state.
func FormatLevelOverview(contactID string, states []progression.LevelState) string {
	var b strings.Builder
	for _, s := range states {
		marker := "  "
		if s.Current {
			marker = StyleHeader.Render("▶ ")
		}
		label := fmt.Sprintf("%s %d %s", s.Level.Icon.Glyph(), s.Level.Level, s.Level.Label)
		switch {
		case !s.Unlocked:
			label = Dim(label)
		case s.Current:
			label = Bold(label)
		}
		b.WriteString(fmt.Sprintf("%s%-28s %s\n", marker, label, levelStatePill(s)))
	}
	return RenderBox("Levels · "+contactID, strings.TrimRight(b.String(), "\n"))
}

func levelStatePill(s progression.LevelState) string {
	switch {
	case s.Complete:
		return StyleGreen.Render("✔ Complete")
	case s.Unlocked:
		return StyleBlue.Render("○ Unlocked")
	default:
		return StyleDim.Render("🔒 Locked")
	}
}

// FormatPathCatalog renders the catalog paths grouped by tier.
func FormatPathCatalog(levels *domain.LevelCatalog, paths *domain.PathCatalog, onlyTier int) string {
	var b strings.Builder
	for _, l := range levels.Levels() {
		if onlyTier > 0 && l.Level != onlyTier {
			continue
		}
		tierPaths := paths.ForTier(l.Level)
		if len(tierPaths) == 0 {
			continue
		}
		b.WriteString(LevelBadge(l) + "\n")
		for _, p := range tierPaths {
			b.WriteString(fmt.Sprintf("  %s %s\n", Bold(p.Name), Dim("("+p.ID+")")))
			for _, s := range p.Steps {
				b.WriteString(fmt.Sprintf("    %s %s\n", Dim(fmt.Sprintf("%d.", s.Index)), s.Name))
			}
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return RenderBox("Paths", Dim("No paths for this tier."))
	}
	return RenderBox("Paths", strings.TrimRight(b.String(), "\n"))
}

// FormatPathInstances renders the contact's path history.
func FormatPathInstances(insts []*domain.PathInstance, paths *domain.PathCatalog, now time.Time) string {
	if len(insts) == 0 {
		return RenderBox("Path history", Dim("No paths started."))
	}
	headers := []string{"ID", "TIER", "PATH", "STATUS", "STARTED"}
	rows := make([][]string, 0, len(insts))
	for _, inst := range insts {
		name := inst.PathID
		if p, ok := paths.Get(inst.PathID); ok {
			name = p.Name
		}
		rows = append(rows, []string{
			TruncID(inst.ID),
			fmt.Sprintf("%d", inst.Tier),
			name,
			PathStatusPill(inst.Status),
			RelativeDateFrom(inst.StartedAt, now),
		})
	}
	return RenderBox("Path history", RenderTable(headers, rows))
}

// FormatStepChecklist renders each step of path with a done marker.
func FormatStepChecklist(path *domain.Path, done []*domain.StepInstance, next *int) string {
	completed := make(map[int]bool, len(done))
	for _, s := range done {
		completed[s.StepIndex] = true
	}

	var b strings.Builder
	b.WriteString(Bold(path.Name) + "  " + RenderStepProgress(len(completed), len(path.Steps)) + "\n\n")
	for _, s := range path.Steps {
		switch {
		case completed[s.Index]:
			b.WriteString(StyleGreen.Render("  ✔ ") + Dim(s.Name) + "\n")
		case next != nil && *next == s.Index:
			b.WriteString(StyleHeader.Render("  ▶ ") + Bold(s.Name) + "\n")
		default:
			b.WriteString(Dim("  ○ ") + s.Name + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func levelLabel(levels *domain.LevelCatalog, n int) string {
	if l, ok := levels.Get(n); ok {
		return LevelBadge(l)
	}
	return fmt.Sprintf("%d", n)
}

func stepLabel(idx *int) string {
	if idx == nil {
		return Dim("--")
	}
	return fmt.Sprintf("%d", *idx)
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return Dim(fallback)
	}
	return *s
}
