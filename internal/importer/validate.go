package importer

import "fmt"

// ValidateCatalog checks catalog rows for errors before conversion.
// Returns a slice of all validation errors found. Duplicate display names
// are allowed (the earlier row wins at lookup time); duplicate ids are not.
func ValidateCatalog(rows []CatalogRow) []error {
	var errs []error

	if len(rows) == 0 {
		errs = append(errs, fmt.Errorf("catalog file has no formula rows"))
		return errs
	}

	seen := make(map[string]int) // id -> first line
	for _, r := range rows {
		prefix := fmt.Sprintf("line %d", r.Line)

		if r.ID == "" {
			errs = append(errs, fmt.Errorf("%s: formula id is required", prefix))
		}
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%s: formula name is required", prefix))
		}

		if r.ID != "" {
			if first, dup := seen[r.ID]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate formula id %q (first on line %d)", prefix, r.ID, first))
			} else {
				seen[r.ID] = r.Line
			}
		}
	}
	return errs
}
