package repository

import (
	"context"

	"github.com/abramin/wattson/internal/domain"
)

type FormulaRepo interface {
	ListAll(ctx context.Context) ([]domain.CatalogEntry, error)
	Count(ctx context.Context) (int, error)
	// ReplaceAll swaps the whole catalog for the given entries. Callers
	// run it inside a unit of work so a failed import leaves the old
	// catalog intact.
	ReplaceAll(ctx context.Context, entries []domain.CatalogEntry) error
}

type PreferenceRepo interface {
	Get(ctx context.Context, scope, indicator string) (*domain.Preference, error)
	Upsert(ctx context.Context, p *domain.Preference) error
	ListByScope(ctx context.Context, scope string) ([]*domain.Preference, error)
	Delete(ctx context.Context, scope, indicator string) error
}
