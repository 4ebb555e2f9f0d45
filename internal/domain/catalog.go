package domain

// CatalogEntry is one formula in the indicator catalog. ID is the platform
// formula code used in queries; Name is the display name users match
// against. Position preserves catalog declaration order so ties resolve
// deterministically.
type CatalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	Position int    `json:"position"`
}

// Preference is a remembered mapping from an indicator phrase to the
// formula the user picked for it, keyed per session scope.
type Preference struct {
	Scope       string `json:"scope"`
	Indicator   string `json:"indicator"`
	FormulaID   string `json:"formulaId"`
	FormulaName string `json:"formulaName"`
}
