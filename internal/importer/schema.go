package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CatalogRow is one raw formula row from a catalog export file.
// Line is the 1-based line number in the source file, kept for error
// reporting.
type CatalogRow struct {
	ID   string
	Name string
	Unit string
	Line int
}

// LoadCatalogFile reads a formula catalog CSV. Columns are
// FORMULAID,FORMULANAME[,UNIT]; a header row is skipped when present.
// Fields are trimmed; fully empty lines are dropped.
func LoadCatalogFile(path string) ([]CatalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	var rows []CatalogRow
	for i, rec := range records {
		if i == 0 && isHeaderRow(rec) {
			continue
		}
		row := CatalogRow{Line: i + 1}
		if len(rec) > 0 {
			row.ID = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			row.Name = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			row.Unit = strings.TrimSpace(rec[2])
		}
		if row.ID == "" && row.Name == "" && row.Unit == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeaderRow(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "FORMULAID")
}
