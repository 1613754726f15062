package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type WatermarkSQLite struct {
	db *sql.DB
}

func NewWatermarkSQLite(db *sql.DB) *WatermarkSQLite { return &WatermarkSQLite{db: db} }

var _ WatermarkRepo = (*WatermarkSQLite)(nil)

// Create initializes a fresh watermark (nothing notified yet) for a
// newly created print record.
func (r *WatermarkSQLite) Create(ctx context.Context, printID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO print_progress (print_id, last_notified_pct) VALUES (?, 0)
		 ON CONFLICT(print_id) DO NOTHING`, printID)
	if err != nil {
		return fmt.Errorf("insert watermark for print %q: %w", printID, err)
	}
	return nil
}

// Get returns the highest already-notified percentage for the print, or
// 0 when nothing has been notified.
func (r *WatermarkSQLite) Get(ctx context.Context, printID string) (int, error) {
	var pct int
	err := r.db.QueryRowContext(ctx,
		`SELECT last_notified_pct FROM print_progress WHERE print_id = ?`, printID).Scan(&pct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select watermark for print %q: %w", printID, err)
	}
	return pct, nil
}

// Advance moves the watermark forward. The MAX guard keeps it monotonic
// even under a replayed report.
func (r *WatermarkSQLite) Advance(ctx context.Context, printID string, pct int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO print_progress (print_id, last_notified_pct) VALUES (?, ?)
		 ON CONFLICT(print_id) DO UPDATE SET last_notified_pct = MAX(last_notified_pct, excluded.last_notified_pct)`,
		printID, pct)
	if err != nil {
		return fmt.Errorf("advance watermark for print %q: %w", printID, err)
	}
	return nil
}
