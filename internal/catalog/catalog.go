// Package catalog holds the in-memory view of the formula catalog that
// name resolution runs against. Both a raw and a normalized name index are
// kept; when two formulas collide on a name, the one declared first in the
// catalog wins.
package catalog

import (
	"sort"

	"github.com/abramin/wattson/internal/domain"
)

type Catalog struct {
	entries []domain.CatalogEntry
	byName  map[string]domain.CatalogEntry
	byNorm  map[string]domain.CatalogEntry
}

// New builds a catalog from the given entries, ordered by Position.
func New(entries []domain.CatalogEntry) *Catalog {
	ordered := make([]domain.CatalogEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	c := &Catalog{
		entries: ordered,
		byName:  make(map[string]domain.CatalogEntry, len(ordered)),
		byNorm:  make(map[string]domain.CatalogEntry, len(ordered)),
	}
	for _, e := range ordered {
		if _, ok := c.byName[e.Name]; !ok {
			c.byName[e.Name] = e
		}
		norm := Normalize(e.Name)
		if _, ok := c.byNorm[norm]; !ok {
			c.byNorm[norm] = e
		}
	}
	return c
}

// Len returns the number of formulas in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all formulas in declaration order. The returned slice is
// shared and must not be modified.
func (c *Catalog) Entries() []domain.CatalogEntry {
	return c.entries
}

// LookupExact finds a formula by its raw display name only.
func (c *Catalog) LookupExact(name string) (domain.CatalogEntry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Lookup finds a formula by raw name first, then by normalized name.
func (c *Catalog) Lookup(name string) (domain.CatalogEntry, bool) {
	if e, ok := c.byName[name]; ok {
		return e, true
	}
	e, ok := c.byNorm[Normalize(name)]
	return e, ok
}
