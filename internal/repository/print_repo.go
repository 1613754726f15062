package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

type PrintSQLite struct {
	db *sql.DB
}

func NewPrintSQLite(db *sql.DB) *PrintSQLite { return &PrintSQLite{db: db} }

var _ PrintRepo = (*PrintSQLite)(nil)

const (
	insertPrintSQL = `
		INSERT INTO prints (id, printer_id, filename, started_ts, paused_at, cancelled_at, ended_at, created_at)
		VALUES (?, ?, ?, ?, NULL, NULL, NULL, ?)
		ON CONFLICT(id) DO NOTHING
	`

	selectPrintSQL = `
		SELECT id, printer_id, filename, started_ts, paused_at, cancelled_at, ended_at, created_at
		FROM prints WHERE id = ?
	`
)

// Create inserts a new print record. CreatedAt is set if zero. Record
// ids are derived from the session, so a retried report may replay the
// insert; the existing row wins and the replay is not an error.
func (r *PrintSQLite) Create(ctx context.Context, rec models.PrintRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	} else {
		created = created.UTC()
	}
	_, err := r.db.ExecContext(ctx, insertPrintSQL,
		rec.ID,
		rec.DeviceID,
		rec.FileName,
		rec.StartedTS,
		created,
	)
	if err != nil {
		return fmt.Errorf("insert print %q: %w", rec.ID, err)
	}
	return nil
}

// Get fetches a print record by id. Returns (nil, nil) if not found.
func (r *PrintSQLite) Get(ctx context.Context, id string) (*models.PrintRecord, error) {
	row := r.db.QueryRowContext(ctx, selectPrintSQL, id)

	var rec models.PrintRecord
	var pausedAt, cancelledAt, endedAt sql.NullTime
	if err := row.Scan(
		&rec.ID,
		&rec.DeviceID,
		&rec.FileName,
		&rec.StartedTS,
		&pausedAt,
		&cancelledAt,
		&endedAt,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select print %q: %w", id, err)
	}
	rec.PausedAt = nullTimeUTC(pausedAt)
	rec.CancelledAt = nullTimeUTC(cancelledAt)
	rec.EndedAt = nullTimeUTC(endedAt)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

// SetPausedAt updates the pause timestamp; nil clears it (resume).
func (r *PrintSQLite) SetPausedAt(ctx context.Context, id string, pausedAt *time.Time) error {
	var arg any
	if pausedAt != nil {
		arg = pausedAt.UTC()
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE prints SET paused_at = ? WHERE id = ?`, arg, id); err != nil {
		return fmt.Errorf("update print %q paused_at: %w", id, err)
	}
	return nil
}

func (r *PrintSQLite) SetCancelledAt(ctx context.Context, id string, cancelledAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE prints SET cancelled_at = ? WHERE id = ?`, cancelledAt.UTC(), id); err != nil {
		return fmt.Errorf("update print %q cancelled_at: %w", id, err)
	}
	return nil
}

func (r *PrintSQLite) SetEndedAt(ctx context.Context, id string, endedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE prints SET ended_at = ? WHERE id = ?`, endedAt.UTC(), id); err != nil {
		return fmt.Errorf("update print %q ended_at: %w", id, err)
	}
	return nil
}

// nullTimeUTC converts a NullTime to a *time.Time normalized to UTC.
func nullTimeUTC(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}
