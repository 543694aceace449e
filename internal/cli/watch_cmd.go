package cli

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
	"github.com/alexanderramin/rapport/internal/notify"
)

func newWatchCmd(app *App) *cobra.Command {
	var contactID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream progression events from Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Events == nil {
				return errors.New("watch needs redis; set redis.addr in the config")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err := app.Events.Subscribe(ctx, func(e notify.Event) {
				if contactID != "" && e.ContactID != contactID {
					return
				}
				printEvent(out, e)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&contactID, "contact", "", "Only show events for this contact")
	return cmd
}

func printEvent(w io.Writer, e notify.Event) {
	detail := ""
	switch e.Type {
	case notify.EventLevelSwitched:
		detail = fmt.Sprintf("%d → %d", e.FromLevel, e.Level)
	case notify.EventPathStarted, notify.EventPathEnded, notify.EventPathSkipped:
		detail = e.PathID
	case notify.EventStepCompleted:
		if e.StepIndex != nil {
			detail = fmt.Sprintf("%s step %d", e.PathID, *e.StepIndex)
		}
	case notify.EventOutreachScheduled, notify.EventOutreachCompleted:
		detail = e.OutreachID
	}
	fmt.Fprintf(w, "%s  %-20s %s %s\n",
		formatter.Dim(e.At.Format("15:04:05")),
		string(e.Type),
		formatter.Bold(e.ContactID),
		detail)
}
