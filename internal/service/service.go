package service

import (
	"context"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
	"github.com/encetamasb/TheSpaghettiDetective/internal/statuscache"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// DeviceAuth resolves printer auth tokens into device identities. It is
// deliberately separate from user Authorization: a printer is never a
// user session.
type DeviceAuth interface {
	ResolveDevice(ctx context.Context, authToken string) (*models.DeviceIdentity, error)
	RegisterDevice(ctx context.Context, name, authToken, serviceToken string) (*models.DeviceIdentity, error)
}

// Ingest is the sole entry point for telemetry reports. The device
// identity must already be verified by the transport layer.
type Ingest interface {
	Report(ctx context.Context, device *models.DeviceIdentity, format models.SourceFormat, raw []byte) error
}

// Monitoring exposes the read-side views: cached status, current print,
// the settings projection and the pause/resume audit trail.
type Monitoring interface {
	GetStatus(deviceID string) *models.CanonicalStatus
	GetCurrentPrint(ctx context.Context, deviceID string) (*models.PrintRecord, error)
	GetSettings(ctx context.Context, deviceID string) (models.SettingsProjection, error)
	ListPrintEvents(ctx context.Context, printID string, f EventFilter) ([]models.PrintEvent, error)
}

// EventFilter narrows the audit trail query by time range and type.
type EventFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "PAUSED", "RESUMED"
}

// Config carries the tunables the service layer needs from main.
type Config struct {
	StatusTTL         time.Duration
	WebhookURL        string
	WebhookRatePerMin int
	JWTSigningKey     string
}

type Service struct {
	Ingest
	Monitoring
	Authorization
	DeviceAuth

	// Hub is the live-view broadcaster; handlers subscribe to it.
	Hub *BroadcastHub
	// Webhooks delivers outbound calls; Run it from main.
	Webhooks *WebhookSender
}

func NewService(repos *repository.Repository, cache *statuscache.Cache, cfg Config) *Service {
	hub := NewBroadcastHub()
	sender := NewWebhookSender(cfg.WebhookURL, cfg.WebhookRatePerMin)
	dispatcher := NewDispatchService(repos.Watermarks)
	lifecycle := NewLifecycleService(repos.Devices, repos.Prints, repos.Watermarks, repos.Events, dispatcher)

	return &Service{
		Ingest:        NewIngestService(NewNormalizer(), lifecycle, repos.Settings, cache, hub, sender, cfg.StatusTTL),
		Monitoring:    NewMonitoringService(cache, repos.Devices, repos.Prints, repos.Events, repos.Settings),
		Authorization: NewAuthService(repos.Auth, cfg.JWTSigningKey),
		DeviceAuth:    NewDeviceAuthService(repos.Devices),
		Hub:           hub,
		Webhooks:      sender,
	}
}
