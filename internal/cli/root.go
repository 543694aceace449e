package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/service"
)

// EventSubscriber streams published progression events until ctx ends.
type EventSubscriber interface {
	Subscribe(ctx context.Context, fn func(notify.Event)) error
}

// App holds references to everything CLI commands use.
type App struct {
	Catalog      *catalog.Catalog
	Progression  service.ProgressionService
	Outreach     service.OutreachService
	Interactions service.InteractionService

	// Events is nil when no Redis is configured.
	Events   EventSubscriber
	Logger   *slog.Logger
	HTTPAddr string

	Now           func() time.Time
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "rapport" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "rapport",
		Short:         "Relationship progression tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newContactCmd(app),
		newLevelCmd(app),
		newPathCmd(app),
		newOutreachCmd(app),
		newInteractionCmd(app),
		newTimelineCmd(app),
		newServeCmd(app),
		newWatchCmd(app),
	)

	return root
}

// FriendlyError turns engine errors into the message shown to the user.
func FriendlyError(err error) string {
	var (
		rce *progression.RequiresCompletionError
		ape *progression.ActivePathError
		pe  *progression.PersistenceError
	)
	switch {
	case errors.As(err, &rce):
		return rce.Error()
	case errors.As(err, &ape):
		return ape.Error()
	case errors.As(err, &pe):
		return fmt.Sprintf("storage unavailable, try again (%v)", pe.Err)
	default:
		return err.Error()
	}
}
