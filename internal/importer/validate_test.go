package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRows() []CatalogRow {
	return []CatalogRow{
		{ID: "F1", Name: "高炉工序能耗", Unit: "kgce/t", Line: 2},
		{ID: "F2", Name: "吨钢耗电", Unit: "kWh/t", Line: 3},
		{ID: "F3", Name: "焦化工序能耗", Line: 4},
	}
}

func TestValidateCatalog_Valid(t *testing.T) {
	errs := ValidateCatalog(validRows())
	assert.Empty(t, errs)
}

func TestValidateCatalog_EmptyFile(t *testing.T) {
	errs := ValidateCatalog(nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no formula rows")
}

func TestValidateCatalog_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(rows []CatalogRow)
		wantMsg string
	}{
		{"missing id", func(rows []CatalogRow) { rows[0].ID = "" }, "formula id is required"},
		{"missing name", func(rows []CatalogRow) { rows[1].Name = "" }, "formula name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := validRows()
			tt.mutate(rows)
			errs := ValidateCatalog(rows)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.wantMsg)
		})
	}
}

func TestValidateCatalog_DuplicateID(t *testing.T) {
	rows := validRows()
	rows[2].ID = "F1"
	errs := ValidateCatalog(rows)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `duplicate formula id "F1"`)
	assert.Contains(t, errs[0].Error(), "line 2", "should point at the first occurrence")
}

func TestValidateCatalog_DuplicateNamesAllowed(t *testing.T) {
	rows := validRows()
	rows[2].Name = rows[0].Name
	errs := ValidateCatalog(rows)
	assert.Empty(t, errs, "duplicate names resolve by catalog order, not validation")
}

func TestValidateCatalog_ReportsAllErrors(t *testing.T) {
	rows := []CatalogRow{
		{ID: "", Name: "", Line: 1},
		{ID: "F1", Name: "高炉工序能耗", Line: 2},
		{ID: "F1", Name: "重复", Line: 3},
	}
	errs := ValidateCatalog(rows)
	assert.Len(t, errs, 3)
}
