package repository

import (
	"context"
	"fmt"

	"github.com/abramin/wattson/internal/db"
	"github.com/abramin/wattson/internal/domain"
)

// SQLiteFormulaRepo implements FormulaRepo using a SQLite database.
type SQLiteFormulaRepo struct {
	db db.DBTX
}

// NewSQLiteFormulaRepo creates a new SQLiteFormulaRepo.
func NewSQLiteFormulaRepo(conn db.DBTX) *SQLiteFormulaRepo {
	return &SQLiteFormulaRepo{db: conn}
}

func (r *SQLiteFormulaRepo) ListAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, unit, position FROM formulas ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing formulas: %w", err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Unit, &e.Position); err != nil {
			return nil, fmt.Errorf("scanning formula: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating formulas: %w", err)
	}
	return entries, nil
}

func (r *SQLiteFormulaRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM formulas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting formulas: %w", err)
	}
	return n, nil
}

func (r *SQLiteFormulaRepo) ReplaceAll(ctx context.Context, entries []domain.CatalogEntry) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM formulas`); err != nil {
		return fmt.Errorf("clearing formulas: %w", err)
	}
	for _, e := range entries {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO formulas (id, name, unit, position) VALUES (?, ?, ?, ?)`,
			e.ID, e.Name, e.Unit, e.Position)
		if err != nil {
			return fmt.Errorf("inserting formula %s: %w", e.ID, err)
		}
	}
	return nil
}
