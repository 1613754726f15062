package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
)

// ErrInvalidDeviceToken marks an unknown or empty printer auth token.
var ErrInvalidDeviceToken = errors.New("invalid or inactive device token")

// DeviceAuthService maps opaque printer auth tokens to device
// identities, upstream of the ingestion core.
type DeviceAuthService struct {
	devices repository.DeviceRepo
}

func NewDeviceAuthService(devices repository.DeviceRepo) *DeviceAuthService {
	return &DeviceAuthService{devices: devices}
}

// ResolveDevice verifies a printer auth token and returns the attached
// identity.
func (s *DeviceAuthService) ResolveDevice(ctx context.Context, authToken string) (*models.DeviceIdentity, error) {
	authToken = strings.TrimSpace(authToken)
	if authToken == "" {
		return nil, ErrInvalidDeviceToken
	}
	device, err := s.devices.GetByAuthToken(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrInvalidDeviceToken
	}
	return device, nil
}

// RegisterDevice creates a printer registry entry. An empty auth token
// gets a generated one.
func (s *DeviceAuthService) RegisterDevice(ctx context.Context, name, authToken, serviceToken string) (*models.DeviceIdentity, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("printer name is required")
	}
	if authToken == "" {
		authToken = uuid.NewString()
	}
	device := models.DeviceIdentity{
		ID:           uuid.NewString(),
		Name:         name,
		ServiceToken: serviceToken,
	}
	if err := s.devices.Create(ctx, device, authToken); err != nil {
		return nil, err
	}
	return &device, nil
}
