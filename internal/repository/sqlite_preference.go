package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abramin/wattson/internal/db"
	"github.com/abramin/wattson/internal/domain"
)

// SQLitePreferenceRepo implements PreferenceRepo using a SQLite database.
type SQLitePreferenceRepo struct {
	db db.DBTX
}

// NewSQLitePreferenceRepo creates a new SQLitePreferenceRepo.
func NewSQLitePreferenceRepo(conn db.DBTX) *SQLitePreferenceRepo {
	return &SQLitePreferenceRepo{db: conn}
}

func (r *SQLitePreferenceRepo) Get(ctx context.Context, scope, indicator string) (*domain.Preference, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT scope, indicator, formula_id, formula_name FROM preferences
		WHERE scope = ? AND indicator = ?`, scope, indicator)

	var p domain.Preference
	err := row.Scan(&p.Scope, &p.Indicator, &p.FormulaID, &p.FormulaName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("preference %s/%s: %w", scope, indicator, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning preference: %w", err)
	}
	return &p, nil
}

func (r *SQLitePreferenceRepo) Upsert(ctx context.Context, p *domain.Preference) error {
	now := nowUTC()
	query := `INSERT INTO preferences (scope, indicator, formula_id, formula_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope, indicator) DO UPDATE
		SET formula_id = excluded.formula_id,
		    formula_name = excluded.formula_name,
		    updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.Scope, p.Indicator, p.FormulaID, p.FormulaName, now, now)
	if err != nil {
		return fmt.Errorf("upserting preference: %w", err)
	}
	return nil
}

func (r *SQLitePreferenceRepo) ListByScope(ctx context.Context, scope string) ([]*domain.Preference, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT scope, indicator, formula_id, formula_name FROM preferences
		WHERE scope = ? ORDER BY indicator`, scope)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*domain.Preference
	for rows.Next() {
		var p domain.Preference
		if err := rows.Scan(&p.Scope, &p.Indicator, &p.FormulaID, &p.FormulaName); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs = append(prefs, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preferences: %w", err)
	}
	return prefs, nil
}

func (r *SQLitePreferenceRepo) Delete(ctx context.Context, scope, indicator string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM preferences WHERE scope = ? AND indicator = ?`, scope, indicator)
	if err != nil {
		return fmt.Errorf("deleting preference: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("preference %s/%s: %w", scope, indicator, ErrNotFound)
	}
	return nil
}
