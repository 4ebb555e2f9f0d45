package formatter

import (
	"fmt"
	"strings"

	"github.com/abramin/wattson/internal/domain"
)

// FormatCatalog renders the formula catalog as a table with a count footer.
func FormatCatalog(entries []domain.CatalogEntry) string {
	if len(entries) == 0 {
		return Dim("The catalog is empty. Import one with: wattson catalog import <file>") + "\n"
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.ID, e.Name, e.Unit}
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"ID", "NAME", "UNIT"}, rows))
	b.WriteString(Dim(fmt.Sprintf("%d formulas", len(entries))))
	b.WriteString("\n")
	return b.String()
}

// FormatPreferences renders the stored indicator→formula choices for one scope.
func FormatPreferences(scope string, prefs []*domain.Preference) string {
	if len(prefs) == 0 {
		return Dim(fmt.Sprintf("No preferences stored for scope %q.", scope)) + "\n"
	}

	rows := make([][]string, len(prefs))
	for i, p := range prefs {
		rows[i] = []string{p.Indicator, p.FormulaName, Dim(p.FormulaID)}
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"INDICATOR", "FORMULA", "ID"}, rows))
	b.WriteString(Dim(fmt.Sprintf("%d preferences in scope %q", len(prefs), scope)))
	b.WriteString("\n")
	return b.String()
}

// FormatPreferenceSaved renders the confirmation line after pref set.
func FormatPreferenceSaved(p *domain.Preference) string {
	return fmt.Sprintf("Saved: %s → %s %s\n",
		Bold(p.Indicator), StyleGreen.Render(p.FormulaName), Dim("("+p.FormulaID+")"))
}

// FormatCandidates renders a scored candidate list for an ambiguous name.
// Used by non-interactive surfaces where the huh picker cannot run.
func FormatCandidates(fragment string, candidates []domain.FormulaCandidate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%q matches several formulas:\n", fragment))
	for _, c := range candidates {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			StyleGreen.Render(fmt.Sprintf("%d)", c.Number)),
			c.FormulaName,
			Dim(fmt.Sprintf("%.4f", c.Score))))
	}
	return b.String()
}

// FormatImportSummary renders the result line of a catalog import.
func FormatImportSummary(n int, path string) string {
	return fmt.Sprintf("Imported %s from %s\n",
		StyleGreen.Render(fmt.Sprintf("%d formulas", n)), path)
}

// FormatValidationErrors renders catalog file validation failures, one per line.
func FormatValidationErrors(errs []error) string {
	var b strings.Builder
	for _, err := range errs {
		b.WriteString(StyleRed.Render("✗ ") + err.Error() + "\n")
	}
	return b.String()
}
