package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/rapport/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// LevelBadge renders a level as "glyph N Label" in purple.
func LevelBadge(l domain.Level) string {
	return StylePurple.Render(fmt.Sprintf("%s %d %s", l.Icon.Glyph(), l.Level, l.Label))
}

// OutreachPill returns a colored indicator for a derived outreach status.
func OutreachPill(s domain.OutreachDisplayStatus) string {
	switch s {
	case domain.DisplayCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.DisplayOverdue:
		return StyleRed.Render("▲ Overdue")
	case domain.DisplayDueToday:
		return StyleYellow.Render("● Due Today")
	case domain.DisplayScheduled:
		return StyleBlue.Render("○ Scheduled")
	default:
		return StyleDim.Render(string(s))
	}
}

// PathStatusPill returns a colored indicator for a path instance status.
func PathStatusPill(s domain.PathStatus) string {
	switch s {
	case domain.PathActive:
		return StyleGreen.Render("● Active")
	case domain.PathEnded:
		return StyleDim.Render("✔ Ended")
	case domain.PathSkipped:
		return StyleDim.Render("⊘ Skipped")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
