package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape codes so assertions are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

var fmtNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func TestRelativeDateFrom(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", fmtNow, "Today"},
		{"tomorrow", fmtNow.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", fmtNow.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", fmtNow.Add(3 * 24 * time.Hour), "In 3d"},
		{"3 days past", fmtNow.Add(-3 * 24 * time.Hour), "3d ago"},
		{"3 weeks future", fmtNow.Add(21 * 24 * time.Hour), "In 3w"},
		{"3 months future", fmtNow.Add(90 * 24 * time.Hour), "In 3mo"},
		{"2 weeks past", fmtNow.Add(-14 * 24 * time.Hour), "2w ago"},
		{"3 months past", fmtNow.Add(-90 * 24 * time.Hour), "3mo ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, fmtNow))
		})
	}
}

func TestHumanDateFrom(t *testing.T) {
	assert.Equal(t, "Today", HumanDateFrom(fmtNow.Add(-2*time.Hour), fmtNow))
	assert.Equal(t, "Yesterday", HumanDateFrom(fmtNow.AddDate(0, 0, -1), fmtNow))
	assert.Equal(t, "Sep 30, 2022", HumanDateFrom(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC), fmtNow))
}

func TestRenderStepProgress(t *testing.T) {
	assert.Equal(t, "[██░] 2/3", stripANSI(RenderStepProgress(2, 3)))
	assert.Equal(t, "[░░] 0/2", stripANSI(RenderStepProgress(-1, 2)))
	assert.Equal(t, "[███] 3/3", stripANSI(RenderStepProgress(5, 3)))
	assert.Equal(t, "[] 0/0", stripANSI(RenderStepProgress(0, 0)))
}

func TestWarmthMeter(t *testing.T) {
	assert.Equal(t, "●●●○○", stripANSI(WarmthMeter(3)))
	assert.Equal(t, "●●●●●", stripANSI(WarmthMeter(9)))
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "B"}, [][]string{
		{Bold("long value"), "x"},
		{"s", "y"},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
	assert.Equal(t, strings.Index(lines[0], "B"), strings.Index(lines[2], "x"))
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"a"}}))
}

func TestOutreachPill(t *testing.T) {
	assert.Contains(t, stripANSI(OutreachPill(domain.DisplayOverdue)), "Overdue")
	assert.Contains(t, stripANSI(OutreachPill(domain.DisplayDueToday)), "Due Today")
	assert.Contains(t, stripANSI(OutreachPill(domain.DisplayScheduled)), "Scheduled")
	assert.Contains(t, stripANSI(OutreachPill(domain.DisplayCompleted)), "Completed")
}

func TestFormatLevelOverview(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	done := map[int]bool{1: true}
	states := progression.Overview(cat.Levels, 2, func(l int) bool { return done[l] })
	out := stripANSI(FormatLevelOverview("alice", states))

	assert.Contains(t, out, "LEVELS · ALICE")
	assert.Contains(t, out, "▶ ")
	assert.Contains(t, out, "Complete")
	assert.Contains(t, out, "Locked")
	assert.Contains(t, out, "Inner Circle")
}

func TestFormatRelationship(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	pathID := "first-coffee"
	step := 1
	rel := &domain.ContactRelationship{
		ContactID:        "alice",
		CurrentLevel:     1,
		CurrentPathID:    &pathID,
		CurrentStepIndex: &step,
		CreatedAt:        fmtNow.AddDate(0, -1, 0),
		LevelSwitches:    []domain.LevelSwitch{{FromLevel: 2, ToLevel: 1, SwitchedAt: fmtNow}},
	}
	out := stripANSI(FormatRelationship(rel, cat.Levels, cat.Paths, fmtNow))

	assert.Contains(t, out, "Acquaintance")
	assert.Contains(t, out, "next: Suggest a coffee")
	assert.Contains(t, out, "2 → 1")
}

func TestFormatRelationshipList_Empty(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	assert.Contains(t, stripANSI(FormatRelationshipList(nil, cat.Levels, fmtNow)), "No contacts enrolled")
}

func TestFormatPathCatalog_FiltersTier(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	out := stripANSI(FormatPathCatalog(cat.Levels, cat.Paths, 1))
	assert.Contains(t, out, "first-coffee")
	assert.NotContains(t, out, "regular-check-ins")

	out = stripANSI(FormatPathCatalog(cat.Levels, cat.Paths, 0))
	assert.Contains(t, out, "tradition")
}

func TestFormatStepChecklist(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	path, ok := cat.Paths.Get("first-coffee")
	require.True(t, ok)

	next := 1
	out := stripANSI(FormatStepChecklist(path, []*domain.StepInstance{{StepIndex: 0}}, &next))
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "✔ Send a follow-up message")
	assert.Contains(t, out, "▶ Suggest a coffee")
	assert.Contains(t, out, "○ Have the coffee")
}

func TestFormatTimeline(t *testing.T) {
	step := 0
	events := []progression.TimelineEvent{
		{Kind: progression.KindLevelSwitched, Date: fmtNow, Payload: progression.Payload{FromLevel: 1, ToLevel: 2}},
		{Kind: progression.KindStepCompleted, Date: fmtNow.AddDate(0, 0, -14), Payload: progression.Payload{StepName: "Have the coffee", StepIndex: &step, Approximate: true}},
		{Kind: progression.KindInteraction, Date: fmtNow.AddDate(0, 0, -20), Payload: progression.Payload{
			Title:       "Cafe",
			Interaction: &domain.Interaction{Warmth: 4, Topics: []string{"books"}},
		}},
	}
	out := stripANSI(FormatTimeline("bob", events, fmtNow))

	assert.Contains(t, out, "Level 1 → 2")
	assert.Contains(t, out, "~May 27, 2025")
	assert.Contains(t, out, "Completed Have the coffee")
	assert.Contains(t, out, "●●●●○")
	assert.Contains(t, out, "books")

	assert.Contains(t, stripANSI(FormatTimeline("bob", nil, fmtNow)), "Nothing has happened yet")
}

func TestFormatOutreaches(t *testing.T) {
	list := []*domain.Outreach{
		{ID: "o1", Title: "Call", DueDate: fmtNow.AddDate(0, 0, -2), Status: domain.OutreachPending},
		{ID: "o2", Title: "Lunch", DueDate: fmtNow.Add(2 * time.Hour), Status: domain.OutreachPending},
	}
	out := stripANSI(FormatOutreaches(list, fmtNow))
	assert.Contains(t, out, "Overdue")
	assert.Contains(t, out, "Due Today")
}
