package testutil

import "github.com/abramin/wattson/internal/domain"

// StandardCatalog returns the formula set shared by package tests:
// process-energy variants that collide on common name fragments, plus one
// distinct power indicator. Positions follow slice order.
func StandardCatalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ID: "F1", Name: "高炉工序能耗", Position: 0},
		{ID: "F2", Name: "高炉工序能耗实绩报出值", Position: 1},
		{ID: "F3", Name: "高炉工序能耗计划报出值", Position: 2},
		{ID: "F4", Name: "焦化工序能耗实绩报出值", Position: 3},
		{ID: "F5", Name: "吨钢耗电", Position: 4},
		{ID: "F6", Name: "转炉工序能耗实绩报出值", Position: 5},
		{ID: "F7", Name: "转炉工序能耗计划报出值", Position: 6},
	}
}

// CatalogEntryOption mutates a catalog entry fixture.
type CatalogEntryOption func(*domain.CatalogEntry)

func WithUnit(unit string) CatalogEntryOption {
	return func(e *domain.CatalogEntry) {
		e.Unit = unit
	}
}

func WithPosition(pos int) CatalogEntryOption {
	return func(e *domain.CatalogEntry) {
		e.Position = pos
	}
}

// NewCatalogEntry builds a catalog entry fixture.
func NewCatalogEntry(id, name string, opts ...CatalogEntryOption) domain.CatalogEntry {
	e := domain.CatalogEntry{ID: id, Name: name}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewPreference builds a stored formula choice fixture.
func NewPreference(scope, indicator, formulaID, formulaName string) *domain.Preference {
	return &domain.Preference{
		Scope:       scope,
		Indicator:   indicator,
		FormulaID:   formulaID,
		FormulaName: formulaName,
	}
}
