package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abramin/wattson/internal/cli/formatter"
	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
)

func newPrefCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pref",
		Short: "Manage indicator→formula preferences",
		Long: "Preferences pin an indicator phrase to one formula for the current\n" +
			"scope, so the assistant stops asking which variant is meant.",
	}
	cmd.AddCommand(
		newPrefListCmd(app),
		newPrefSetCmd(app),
		newPrefRmCmd(app),
	)
	return cmd
}

func newPrefListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored preferences for the current scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := app.Prefs.ListByScope(cmd.Context(), app.Scope)
			if err != nil {
				return fmt.Errorf("listing preferences: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPreferences(app.Scope, prefs))
			return nil
		},
	}
}

func newPrefSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <indicator> <formula>",
		Short: "Pin an indicator phrase to a formula",
		Long: "Resolve <formula> against the catalog and store it as the fixed choice\n" +
			"for <indicator>. An ambiguous formula name opens a picker on a terminal;\n" +
			"otherwise rerun with the exact catalog name.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indicator, formulaArg := args[0], args[1]
			out := cmd.OutOrStdout()

			res, err := app.Resolver.Resolve(cmd.Context(), formulaArg, nil)
			if err != nil {
				return fmt.Errorf("resolving %q: %w", formulaArg, err)
			}

			var entry *domain.CatalogEntry
			switch res.Outcome {
			case resolve.OutcomeResolved:
				entry = res.Formula

			case resolve.OutcomeCandidates:
				if !app.interactive() {
					fmt.Fprint(out, formatter.FormatCandidates(formulaArg, res.Candidates))
					return fmt.Errorf("%q is ambiguous; rerun with the full formula name", formulaArg)
				}
				var formulaID string
				form := candidatePickForm(formulaArg, res.Candidates, &formulaID)
				if err := form.Run(); err != nil {
					return err
				}
				for i := range res.Candidates {
					if res.Candidates[i].FormulaID == formulaID {
						entry = &domain.CatalogEntry{
							ID:   res.Candidates[i].FormulaID,
							Name: res.Candidates[i].FormulaName,
						}
						break
					}
				}
				if entry == nil {
					return fmt.Errorf("no formula chosen")
				}

			default:
				return fmt.Errorf("no formula in the catalog matches %q", formulaArg)
			}

			p := &domain.Preference{
				Scope:       app.Scope,
				Indicator:   indicator,
				FormulaID:   entry.ID,
				FormulaName: entry.Name,
			}
			if err := app.Prefs.Upsert(cmd.Context(), p); err != nil {
				return fmt.Errorf("saving preference: %w", err)
			}

			fmt.Fprint(out, formatter.FormatPreferenceSaved(p))
			return nil
		},
	}
}

func newPrefRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <indicator>",
		Short: "Remove the stored preference for an indicator phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.Prefs.Delete(cmd.Context(), app.Scope, args[0])
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("no preference stored for %q in scope %q", args[0], app.Scope)
				}
				return fmt.Errorf("removing preference: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed preference for %s\n", args[0])
			return nil
		},
	}
}
