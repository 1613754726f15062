package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// DeviceRepo is the printer registry: auth token resolution and the
// per-device current-print pointer.
type DeviceRepo interface {
	Create(ctx context.Context, d models.DeviceIdentity, authToken string) error
	GetByAuthToken(ctx context.Context, token string) (*models.DeviceIdentity, error)
	GetByID(ctx context.Context, id string) (*models.DeviceIdentity, error)
	SetCurrentPrint(ctx context.Context, deviceID string, printID *string) error
}

// PrintRepo persists print records.
type PrintRepo interface {
	Create(ctx context.Context, rec models.PrintRecord) error
	Get(ctx context.Context, id string) (*models.PrintRecord, error)
	SetPausedAt(ctx context.Context, id string, pausedAt *time.Time) error
	SetCancelledAt(ctx context.Context, id string, cancelledAt time.Time) error
	SetEndedAt(ctx context.Context, id string, endedAt time.Time) error
}

// WatermarkRepo persists per-print progress notification watermarks.
type WatermarkRepo interface {
	Create(ctx context.Context, printID string) error
	Get(ctx context.Context, printID string) (int, error)
	Advance(ctx context.Context, printID string, pct int) error
}

// SettingsRepo stores the flat last-write-wins settings projection.
type SettingsRepo interface {
	Upsert(ctx context.Context, deviceID string, settings models.SettingsProjection) error
	Get(ctx context.Context, deviceID string) (models.SettingsProjection, error)
}

// PrintEventRepo is the append-only pause/resume audit trail.
type PrintEventRepo interface {
	Append(ctx context.Context, e models.PrintEvent) error
	List(ctx context.Context, printID string, from, to time.Time, typ string) ([]models.PrintEvent, error)
}

type Repository struct {
	Devices    DeviceRepo
	Prints     PrintRepo
	Watermarks WatermarkRepo
	Settings   SettingsRepo
	Events     PrintEventRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Devices:    NewDeviceSQLite(db),
		Prints:     NewPrintSQLite(db),
		Watermarks: NewWatermarkSQLite(db),
		Settings:   NewSettingsSQLite(db),
		Events:     NewPrintEventSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
