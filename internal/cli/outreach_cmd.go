package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
)

const dateLayout = "2006-01-02"

func newOutreachCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outreach",
		Short: "Schedule and complete outreaches",
	}

	cmd.AddCommand(
		newOutreachScheduleCmd(app),
		newOutreachCompleteCmd(app),
		newOutreachListCmd(app),
	)

	return cmd
}

func newOutreachScheduleCmd(app *App) *cobra.Command {
	var title, due string
	var step int

	cmd := &cobra.Command{
		Use:   "schedule <contact-id>",
		Short: "Schedule an outreach, optionally standing for a step of the current path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID := args[0]
			dueDate, err := time.ParseInLocation(dateLayout, due, time.Local)
			if err != nil {
				return fmt.Errorf("invalid due date %q: %w", due, err)
			}

			o := &domain.Outreach{ContactID: contactID, Title: title, DueDate: dueDate}
			if cmd.Flags().Changed("step") {
				rel, err := app.Progression.GetRelationship(cmd.Context(), contactID)
				if err != nil {
					return err
				}
				if rel.CurrentPathInstanceID == nil {
					return fmt.Errorf("%s has no current path to link the outreach to", contactID)
				}
				instID := *rel.CurrentPathInstanceID
				o.PathInstanceID = &instID
				o.StepIndex = &step
				if title == "" {
					if path, ok := app.Catalog.Paths.Get(*rel.CurrentPathID); ok {
						o.Title = path.StepName(step)
					}
				}
			}

			if err := app.Outreach.Schedule(cmd.Context(), o); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s %s %s\n",
				formatter.Bold(o.Title),
				formatter.OutreachPill(progression.ClassifyOutreach(o.Status, o.DueDate, app.now())),
				formatter.TruncID(o.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "What to do")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&step, "step", 0, "Link to this step index of the current path")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func newOutreachCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <outreach-id>",
		Short: "Mark an outreach done; a linked step is completed too",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.Outreach.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Completed %s", formatter.Bold(o.Title))
			if o.IsLinkedToStep() {
				msg += formatter.Dim(fmt.Sprintf(" (step %d)", *o.StepIndex))
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newOutreachListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <contact-id>",
		Short: "List a contact's outreaches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Outreach.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatOutreaches(list, app.now()))
			return nil
		},
	}
}
