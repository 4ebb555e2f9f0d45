package importer

import "github.com/abramin/wattson/internal/domain"

// Convert transforms validated catalog rows into domain entries ready for
// persistence. Call ValidateCatalog first; Convert assumes rows are valid.
// Position follows file order so earlier rows win lookup ties.
func Convert(rows []CatalogRow) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, domain.CatalogEntry{
			ID:       r.ID,
			Name:     r.Name,
			Unit:     r.Unit,
			Position: i,
		})
	}
	return entries
}
