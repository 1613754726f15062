package service

import (
	"context"
	"errors"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
	"github.com/encetamasb/TheSpaghettiDetective/internal/statuscache"
)

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

	// ErrDeviceNotFound marks lookups of unknown printers.
	ErrDeviceNotFound = errors.New("printer not found")
)

// MonitoringService serves the read side: cached canonical status, the
// current print record and the audit trail.
type MonitoringService struct {
	cache    *statuscache.Cache
	devices  repository.DeviceRepo
	prints   repository.PrintRepo
	events   repository.PrintEventRepo
	settings repository.SettingsRepo
}

func NewMonitoringService(
	cache *statuscache.Cache,
	devices repository.DeviceRepo,
	prints repository.PrintRepo,
	events repository.PrintEventRepo,
	settings repository.SettingsRepo,
) *MonitoringService {
	return &MonitoringService{cache: cache, devices: devices, prints: prints, events: events, settings: settings}
}

// GetStatus returns the latest cached canonical status, or nil when
// the device has not reported within the TTL window.
func (s *MonitoringService) GetStatus(deviceID string) *models.CanonicalStatus {
	return s.cache.Get(deviceID)
}

// GetCurrentPrint returns the device's current print record, or nil
// when no print is active.
func (s *MonitoringService) GetCurrentPrint(ctx context.Context, deviceID string) (*models.PrintRecord, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrDeviceNotFound
	}
	if device.CurrentPrintID == nil {
		return nil, nil
	}
	return s.prints.Get(ctx, *device.CurrentPrintID)
}

// GetSettings returns the device's last-write-wins settings projection.
// A known printer that never reported settings yields an empty
// projection, not an error.
func (s *MonitoringService) GetSettings(ctx context.Context, deviceID string) (models.SettingsProjection, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrDeviceNotFound
	}
	return s.settings.Get(ctx, deviceID)
}

// ListPrintEvents returns the pause/resume audit trail for a print,
// filtered by the normalized time range and type.
func (s *MonitoringService) ListPrintEvents(ctx context.Context, printID string, f EventFilter) ([]models.PrintEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.events.List(ctx, printID, from, to, f.Type)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
