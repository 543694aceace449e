package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
)

// FormatOutreaches renders outreaches with their derived status at now.
func FormatOutreaches(list []*domain.Outreach, now time.Time) string {
	if len(list) == 0 {
		return RenderBox("Outreaches", Dim("Nothing scheduled."))
	}
	headers := []string{"ID", "TITLE", "DUE", "STATUS", "STEP"}
	rows := make([][]string, 0, len(list))
	for _, o := range list {
		step := Dim("--")
		if o.StepIndex != nil {
			step = fmt.Sprintf("%d", *o.StepIndex)
		}
		rows = append(rows, []string{
			TruncID(o.ID),
			Bold(o.Title),
			RelativeDateFrom(o.DueDate, now),
			OutreachPill(progression.ClassifyOutreach(o.Status, o.DueDate, now)),
			step,
		})
	}
	return RenderBox("Outreaches", RenderTable(headers, rows))
}

// FormatInteractions renders the interaction log, newest first as given.
func FormatInteractions(list []*domain.Interaction, now time.Time) string {
	if len(list) == 0 {
		return RenderBox("Interactions", Dim("No interactions logged."))
	}
	headers := []string{"ID", "DATE", "WHERE", "WARMTH", "TOPICS"}
	rows := make([][]string, 0, len(list))
	for _, i := range list {
		where := i.Location
		if i.Strengthened {
			where += StyleGreen.Render(" ↑")
		}
		rows = append(rows, []string{
			TruncID(i.ID),
			HumanDateFrom(i.Date, now),
			where,
			WarmthMeter(i.Warmth),
			strings.Join(i.Topics, ", "),
		})
	}
	return RenderBox("Interactions", RenderTable(headers, rows))
}

// FormatTimeline renders timeline events as a vertical list.
func FormatTimeline(contactID string, events []progression.TimelineEvent, now time.Time) string {
	if len(events) == 0 {
		return RenderBox("Timeline · "+contactID, Dim("Nothing has happened yet."))
	}
	return RenderBox("Timeline · "+contactID, TimelineBody(events, now))
}

// TimelineBody renders the events without the surrounding box.
func TimelineBody(events []progression.TimelineEvent, now time.Time) string {
	var b strings.Builder
	for _, e := range events {
		date := HumanDateFrom(e.Date, now)
		if e.Payload.Approximate {
			date = "~" + date
		}
		b.WriteString(fmt.Sprintf("%s %s  %s\n", timelineGlyph(e.Kind), Dim(fmt.Sprintf("%-13s", date)), timelineLine(e)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func timelineGlyph(k progression.EventKind) string {
	switch k {
	case progression.KindInteraction:
		return StyleBlue.Render("◆")
	case progression.KindLevelSwitched:
		return StylePurple.Render("★")
	case progression.KindPathStarted:
		return StyleHeader.Render("▶")
	case progression.KindStepCompleted, progression.KindOutreachCompleted:
		return StyleGreen.Render("✔")
	case progression.KindOutreachScheduled:
		return StyleYellow.Render("○")
	default:
		return Dim("•")
	}
}

func timelineLine(e progression.TimelineEvent) string {
	p := e.Payload
	switch e.Kind {
	case progression.KindInteraction:
		line := Bold(p.Title)
		if p.Interaction != nil {
			line += " " + WarmthMeter(p.Interaction.Warmth)
			if len(p.Interaction.Topics) > 0 {
				line += Dim(" · " + strings.Join(p.Interaction.Topics, ", "))
			}
		}
		return line
	case progression.KindLevelSwitched:
		return fmt.Sprintf("Level %d → %d", p.FromLevel, p.ToLevel)
	case progression.KindPathStarted:
		return "Started " + Bold(p.PathName)
	case progression.KindStepCompleted:
		return "Completed " + Bold(p.StepName)
	case progression.KindOutreachCompleted, progression.KindOutreachScheduled:
		return Bold(p.Title) + " " + OutreachPill(p.DisplayStatus)
	default:
		return p.Title
	}
}
