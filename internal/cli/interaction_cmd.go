package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
	"github.com/alexanderramin/rapport/internal/domain"
)

func newInteractionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interaction",
		Short: "Log time spent with a contact",
	}

	cmd.AddCommand(
		newInteractionLogCmd(app),
		newInteractionListCmd(app),
		newInteractionDeleteCmd(app),
	)

	return cmd
}

func newInteractionLogCmd(app *App) *cobra.Command {
	var location, date, note string
	var topics []string
	var warmth int
	var strengthened bool

	cmd := &cobra.Command{
		Use:     "log <contact-id>",
		Aliases: []string{"add"},
		Short:   "Record an interaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i := &domain.Interaction{
				ContactID:    args[0],
				Location:     location,
				Topics:       topics,
				Warmth:       warmth,
				Strengthened: strengthened,
				Note:         note,
			}
			if date != "" {
				d, err := time.ParseInLocation(dateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", date, err)
				}
				i.Date = d
			}
			if err := app.Interactions.Log(cmd.Context(), i); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged interaction with %s %s %s\n",
				args[0], formatter.WarmthMeter(i.Warmth), formatter.TruncID(i.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Where it happened")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "Comma-separated topics")
	cmd.Flags().IntVar(&warmth, "warmth", 3, "Warmth from 1 to 5")
	cmd.Flags().BoolVar(&strengthened, "strengthened", false, "The relationship grew stronger")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to now")

	return cmd
}

func newInteractionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <contact-id>",
		Short: "List a contact's interactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Interactions.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatInteractions(list, app.now()))
			return nil
		},
	}
}

func newInteractionDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <interaction-id>",
		Short: "Delete a logged interaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Interactions.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}
}
