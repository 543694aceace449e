package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
)

func newLevelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Inspect and switch relationship levels",
	}

	cmd.AddCommand(
		newLevelListCmd(app),
		newLevelSwitchCmd(app),
		newLevelStatusCmd(app),
	)

	return cmd
}

func newLevelListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [contact-id]",
		Short: "List levels, or a contact's lock and completion state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, l := range app.Catalog.Levels.Levels() {
					fmt.Fprintf(out, "%s  %s\n", formatter.LevelBadge(l), formatter.Dim(l.Description))
				}
				return nil
			}
			states, err := app.Progression.LevelOverview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatLevelOverview(args[0], states))
			return nil
		},
	}
}

func newLevelSwitchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <contact-id> [level]",
		Short: "Move a contact to another level",
		Long: `Move a contact to another level. Going back is always allowed; going
forward requires the current level to be complete. Without a level argument
an interactive picker of unlocked levels is shown.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID := args[0]
			var target int
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid level %q: %w", args[1], err)
				}
				target = n
			} else {
				if !app.interactive() {
					return fmt.Errorf("level is required when not running in a terminal")
				}
				n, err := pickLevel(cmd.Context(), app, contactID)
				if err != nil {
					return err
				}
				target = n
			}

			before, err := app.Progression.GetRelationship(cmd.Context(), contactID)
			if err != nil {
				return err
			}
			rel, err := app.Progression.SwitchLevel(cmd.Context(), contactID, target)
			if err != nil {
				return err
			}
			level, _ := app.Catalog.Levels.Get(rel.CurrentLevel)
			if before.CurrentLevel == rel.CurrentLevel {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already at %s\n", contactID, formatter.LevelBadge(level))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", contactID, formatter.LevelBadge(level))
			return nil
		},
	}
}

// pickLevel shows a picker limited to the contact's unlocked levels.
func pickLevel(ctx context.Context, app *App, contactID string) (int, error) {
	states, err := app.Progression.LevelOverview(ctx, contactID)
	if err != nil {
		return 0, err
	}
	var options []huh.Option[int]
	for _, s := range states {
		if !s.Unlocked {
			continue
		}
		label := fmt.Sprintf("%s %d %s", s.Level.Icon.Glyph(), s.Level.Level, s.Level.Label)
		if s.Current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, s.Level.Level))
	}

	var choice int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Switch " + contactID + " to level").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return 0, err
	}
	return choice, nil
}

func newLevelStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <contact-id> <level>",
		Short: "Report whether a level is complete and unlocked",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid level %q: %w", args[1], err)
			}
			complete, err := app.Progression.IsLevelComplete(cmd.Context(), args[0], level)
			if err != nil {
				return err
			}
			unlocked, err := app.Progression.IsLevelUnlocked(cmd.Context(), args[0], level)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "level %d: complete=%t unlocked=%t\n", level, complete, unlocked)
			return nil
		},
	}
}
