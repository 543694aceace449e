package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
)

func newTimelineCmd(app *App) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "timeline <contact-id>",
		Short: "Show everything that happened with a contact, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID := args[0]
			events, err := app.Progression.Timeline(cmd.Context(), contactID)
			if err != nil {
				return err
			}
			now := app.now()

			if interactive && app.interactive() && len(events) > 0 {
				m := newTimelineViewer(contactID, formatter.TimelineBody(events, now))
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimeline(contactID, events, now))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open a scrollable viewer")
	return cmd
}

// timelineViewer is a full-screen scrollable view of a rendered timeline.
type timelineViewer struct {
	title   string
	content string
	vp      viewport.Model
	ready   bool
}

func newTimelineViewer(contactID, content string) timelineViewer {
	return timelineViewer{title: "Timeline · " + contactID, content: content}
}

func (m timelineViewer) Init() tea.Cmd { return nil }

func (m timelineViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		height := max(msg.Height-2, 1)
		if !m.ready {
			m.vp = viewport.New(msg.Width, height)
			m.vp.SetContent(m.content)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = height
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m timelineViewer) View() string {
	if !m.ready {
		return "loading..."
	}
	footer := formatter.Dim(fmt.Sprintf("%3.0f%%  ↑/↓ scroll · q quit", m.vp.ScrollPercent()*100))
	return strings.Join([]string{formatter.StyleHeader.Render(strings.ToUpper(m.title)), m.vp.View(), footer}, "\n")
}
