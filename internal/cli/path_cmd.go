package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
)

func newPathCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Work through development paths",
	}

	cmd.AddCommand(
		newPathListCmd(app),
		newPathStartCmd(app),
		newPathStepCmd(app),
		newPathEndCmd(app),
		newPathSkipCmd(app),
		newPathHistoryCmd(app),
	)

	return cmd
}

func newPathListCmd(app *App) *cobra.Command {
	var tier int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog paths by tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tier != 0 && !app.Catalog.Levels.Contains(tier) {
				return fmt.Errorf("unknown tier %d", tier)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPathCatalog(app.Catalog.Levels, app.Catalog.Paths, tier))
			return nil
		},
	}

	cmd.Flags().IntVar(&tier, "tier", 0, "Only show paths for this tier")
	return cmd
}

func newPathStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <contact-id> <path-id>",
		Short: "Start a path at the contact's current level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := app.Progression.StartPath(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			path, _ := app.Catalog.Paths.Get(inst.PathID)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started %s for %s %s\n", formatter.Bold(path.Name), args[0], formatter.TruncID(inst.ID))
			first := 0
			fmt.Fprintln(out, formatter.FormatStepChecklist(path, nil, &first))
			return nil
		},
	}
}

func newPathStepCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "step <contact-id> [index]",
		Short: "Complete a step of the current path (defaults to the next one)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID := args[0]
			var index int
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid step index %q: %w", args[1], err)
				}
				index = n
			} else {
				rel, err := app.Progression.GetRelationship(cmd.Context(), contactID)
				if err != nil {
					return err
				}
				if rel.CurrentStepIndex == nil {
					return fmt.Errorf("%s has no current path; start one with `rapport path start`", contactID)
				}
				index = *rel.CurrentStepIndex
			}

			progress, err := app.Progression.CompleteStep(cmd.Context(), contactID, index)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path, ok := app.Catalog.Paths.Get(progress.Instance.PathID)
			if !ok {
				fmt.Fprintf(out, "Completed step %d\n", index)
				return nil
			}
			fmt.Fprintf(out, "Completed %s\n", formatter.Bold(path.StepName(index)))
			fmt.Fprintln(out, formatter.FormatStepChecklist(path, progress.Steps, progress.Relationship.CurrentStepIndex))
			if progress.PathEnded {
				fmt.Fprintf(out, "%s Path finished; level %d is complete.\n", formatter.StyleGreen.Render("✔"), progress.Instance.Tier)
			}
			return nil
		},
	}
}

func newPathEndCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "end <contact-id>",
		Short: "End the active path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := app.Progression.EndPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ended %s %s\n", inst.PathID, formatter.PathStatusPill(inst.Status))
			return nil
		},
	}
}

func newPathSkipCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <contact-id>",
		Short: "Skip the active path; the level still counts as complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := app.Progression.SkipPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s %s\n", inst.PathID, formatter.PathStatusPill(inst.Status))
			return nil
		},
	}
}

func newPathHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <contact-id>",
		Short: "List every path instance of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insts, err := app.Progression.ListPathInstances(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPathInstances(insts, app.Catalog.Paths, app.now()))
			return nil
		},
	}
}
