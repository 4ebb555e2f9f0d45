package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abramin/wattson/internal/cli/formatter"
	"github.com/abramin/wattson/internal/db"
	"github.com/abramin/wattson/internal/importer"
	"github.com/abramin/wattson/internal/repository"
)

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import the formula catalog",
	}
	cmd.AddCommand(
		newCatalogListCmd(app),
		newCatalogImportCmd(app),
	)
	return cmd
}

func newCatalogListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all formulas in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Formulas.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing catalog: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCatalog(entries))
			return nil
		},
	}
}

func newCatalogImportCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the catalog from a FORMULAID,FORMULANAME export",
		Long: "Parse a catalog export file, validate it and atomically replace the\n" +
			"stored catalog. A failed import leaves the old catalog untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			rows, err := importer.LoadCatalogFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			if errs := importer.ValidateCatalog(rows); len(errs) > 0 {
				fmt.Fprint(out, formatter.FormatValidationErrors(errs))
				return fmt.Errorf("%s failed validation (%d problems)", path, len(errs))
			}
			entries := importer.Convert(rows)

			existing, err := app.Formulas.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("counting catalog: %w", err)
			}
			if existing > 0 && !yes && app.interactive() {
				msg := fmt.Sprintf("Replace the existing catalog (%d formulas)? [y/N]: ", existing)
				if !promptYesNoIO(cmd.InOrStdin(), out, msg) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			err = app.UoW.WithinTx(cmd.Context(), func(ctx context.Context, tx db.DBTX) error {
				return repository.NewSQLiteFormulaRepo(tx).ReplaceAll(ctx, entries)
			})
			if err != nil {
				return fmt.Errorf("replacing catalog: %w", err)
			}

			fmt.Fprint(out, formatter.FormatImportSummary(len(entries), path))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace a non-empty catalog without asking")
	return cmd
}
