package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDeviceAuth struct {
	device      *models.DeviceIdentity
	resolveErr  error
	registered  *models.DeviceIdentity
	registerErr error

	lastResolveToken string
	lastRegisterName string
}

func (m *mockDeviceAuth) ResolveDevice(ctx context.Context, token string) (*models.DeviceIdentity, error) {
	m.lastResolveToken = token
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	if m.device == nil {
		return nil, service.ErrInvalidDeviceToken
	}
	return m.device, nil
}
func (m *mockDeviceAuth) RegisterDevice(ctx context.Context, name, authToken, serviceToken string) (*models.DeviceIdentity, error) {
	m.lastRegisterName = name
	return m.registered, m.registerErr
}

type mockIngest struct {
	err        error
	calls      int
	lastDevice *models.DeviceIdentity
	lastFormat models.SourceFormat
	lastRaw    []byte
}

func (m *mockIngest) Report(ctx context.Context, device *models.DeviceIdentity, format models.SourceFormat, raw []byte) error {
	m.calls++
	m.lastDevice = device
	m.lastFormat = format
	m.lastRaw = raw
	return m.err
}

type mockMonitoring struct {
	status      *models.CanonicalStatus
	currentRec  *models.PrintRecord
	currentErr  error
	settings    models.SettingsProjection
	settingsErr error
	events      []models.PrintEvent
	eventsErr   error

	lastPrintID string
	lastFilter  service.EventFilter
}

func (m *mockMonitoring) GetStatus(deviceID string) *models.CanonicalStatus {
	return m.status
}
func (m *mockMonitoring) GetCurrentPrint(ctx context.Context, deviceID string) (*models.PrintRecord, error) {
	return m.currentRec, m.currentErr
}
func (m *mockMonitoring) GetSettings(ctx context.Context, deviceID string) (models.SettingsProjection, error) {
	return m.settings, m.settingsErr
}
func (m *mockMonitoring) ListPrintEvents(ctx context.Context, printID string, f service.EventFilter) ([]models.PrintEvent, error) {
	m.lastPrintID = printID
	m.lastFilter = f
	return m.events, m.eventsErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	if s.Hub == nil {
		s.Hub = service.NewBroadcastHub()
	}
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
