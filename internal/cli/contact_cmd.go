package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/rapport/internal/cli/formatter"
)

func newContactCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Enroll and inspect contacts",
	}

	cmd.AddCommand(
		newContactEnrollCmd(app),
		newContactShowCmd(app),
		newContactListCmd(app),
	)

	return cmd
}

func newContactEnrollCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <contact-id>",
		Short: "Start tracking a contact at level 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := app.Progression.Enroll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			level, _ := app.Catalog.Levels.Get(rel.CurrentLevel)
			fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s at %s\n", rel.ContactID, formatter.LevelBadge(level))
			return nil
		},
	}
}

func newContactShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <contact-id>",
		Short: "Show a contact's relationship state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := app.Progression.GetRelationship(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRelationship(rel, app.Catalog.Levels, app.Catalog.Paths, app.now()))
			return nil
		},
	}
}

func newContactListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List enrolled contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			rels, err := app.Progression.ListRelationships(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRelationshipList(rels, app.Catalog.Levels, app.now()))
			return nil
		},
	}
}
