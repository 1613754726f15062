package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite { return &DeviceSQLite{db: db} }

var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	insertPrinterSQL = `
		INSERT INTO printers (id, name, auth_token, service_token, current_print_id, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
	`

	selectPrinterCols = `id, name, service_token, current_print_id, created_at`
)

// Create registers a printer with its auth token.
func (r *DeviceSQLite) Create(ctx context.Context, d models.DeviceIdentity, authToken string) error {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	} else {
		created = created.UTC()
	}
	_, err := r.db.ExecContext(ctx, insertPrinterSQL, d.ID, d.Name, authToken, d.ServiceToken, created)
	if err != nil {
		return fmt.Errorf("insert printer %q: %w", d.ID, err)
	}
	return nil
}

// GetByAuthToken resolves a device identity from its opaque auth
// token. Returns (nil, nil) for an unknown token.
func (r *DeviceSQLite) GetByAuthToken(ctx context.Context, token string) (*models.DeviceIdentity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectPrinterCols+` FROM printers WHERE auth_token = ?`, token)
	return scanPrinter(row)
}

// GetByID fetches a printer by id. Returns (nil, nil) if not found.
func (r *DeviceSQLite) GetByID(ctx context.Context, id string) (*models.DeviceIdentity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectPrinterCols+` FROM printers WHERE id = ?`, id)
	return scanPrinter(row)
}

// SetCurrentPrint advances or clears the device's current-print
// pointer.
func (r *DeviceSQLite) SetCurrentPrint(ctx context.Context, deviceID string, printID *string) error {
	var arg any
	if printID != nil {
		arg = *printID
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE printers SET current_print_id = ? WHERE id = ?`, arg, deviceID); err != nil {
		return fmt.Errorf("update printer %q current_print_id: %w", deviceID, err)
	}
	return nil
}

func scanPrinter(row *sql.Row) (*models.DeviceIdentity, error) {
	var d models.DeviceIdentity
	var current sql.NullString
	if err := row.Scan(&d.ID, &d.Name, &d.ServiceToken, &current, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select printer: %w", err)
	}
	if current.Valid {
		s := current.String
		d.CurrentPrintID = &s
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return &d, nil
}
