package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abramin/wattson/internal/db"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
	"github.com/abramin/wattson/internal/session"
)

// App holds the wired services CLI commands run against. Sessions is nil
// when the LLM classifier is disabled; the conversational commands then
// fail with a pointer at the enable switch while catalog and preference
// management keep working.
type App struct {
	Sessions *session.Manager
	Formulas repository.FormulaRepo
	Prefs    repository.PreferenceRepo
	Resolver *resolve.Resolver
	UoW      db.UnitOfWork
	Logger   *log.Logger

	// Scope keys preferences and sessions for one conversation owner.
	Scope string

	// Interactive reports whether stdin is a terminal. Gates the huh
	// picker, the import confirmation and the chat TUI.
	Interactive func() bool
}

func (a *App) interactive() bool {
	return a.Interactive != nil && a.Interactive()
}

// NewRootCmd creates the top-level "wattson" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "wattson",
		Short: "Conversational assistant for industrial energy indicators",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose && app.Logger != nil {
				app.Logger.SetLevel(log.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&app.Scope, "scope", app.Scope,
		"conversation scope for sessions and stored preferences")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(
		newAskCmd(app),
		newChatCmd(app),
		newCatalogCmd(app),
		newPrefCmd(app),
	)

	return root
}
