package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite { return &SettingsSQLite{db: db} }

var _ SettingsRepo = (*SettingsSQLite)(nil)

const upsertSettingSQL = `
	INSERT INTO printer_settings (printer_id, key, value)
	VALUES (?, ?, ?)
	ON CONFLICT(printer_id, key) DO UPDATE SET value = excluded.value
`

// Upsert writes every key of the projection, last write wins.
func (r *SettingsSQLite) Upsert(ctx context.Context, deviceID string, settings models.SettingsProjection) error {
	if len(settings) == 0 {
		return nil
	}
	for k, v := range settings {
		if _, err := r.db.ExecContext(ctx, upsertSettingSQL, deviceID, k, v); err != nil {
			return fmt.Errorf("upsert setting %q for printer %q: %w", k, deviceID, err)
		}
	}
	return nil
}

// Get loads the full projection for a printer. An unknown printer
// yields an empty projection.
func (r *SettingsSQLite) Get(ctx context.Context, deviceID string) (models.SettingsProjection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM printer_settings WHERE printer_id = ?`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("select settings for printer %q: %w", deviceID, err)
	}
	defer rows.Close()

	out := models.SettingsProjection{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting for printer %q: %w", deviceID, err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
