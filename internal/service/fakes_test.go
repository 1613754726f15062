package service

import (
	"context"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

type fakeDeviceRepo struct {
	devices   map[string]*models.DeviceIdentity
	tokens    map[string]string
	setErr    error
	setCalls  []setCurrentCall
	createErr error
	getErr    error
}

type setCurrentCall struct {
	deviceID string
	printID  *string
}

func newFakeDeviceRepo(devices ...*models.DeviceIdentity) *fakeDeviceRepo {
	m := make(map[string]*models.DeviceIdentity)
	for _, d := range devices {
		m[d.ID] = d
	}
	return &fakeDeviceRepo{devices: m, tokens: make(map[string]string)}
}

func (f *fakeDeviceRepo) Create(ctx context.Context, d models.DeviceIdentity, authToken string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.devices[d.ID] = &d
	f.tokens[authToken] = d.ID
	return nil
}

func (f *fakeDeviceRepo) GetByAuthToken(ctx context.Context, token string) (*models.DeviceIdentity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	id, ok := f.tokens[token]
	if !ok {
		return nil, nil
	}
	return f.devices[id], nil
}

func (f *fakeDeviceRepo) GetByID(ctx context.Context, id string) (*models.DeviceIdentity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.devices[id], nil
}

func (f *fakeDeviceRepo) SetCurrentPrint(ctx context.Context, deviceID string, printID *string) error {
	f.setCalls = append(f.setCalls, setCurrentCall{deviceID: deviceID, printID: printID})
	if f.setErr != nil {
		return f.setErr
	}
	if d, ok := f.devices[deviceID]; ok {
		d.CurrentPrintID = printID
	}
	return nil
}

type fakePrintRepo struct {
	records   map[string]*models.PrintRecord
	createErr error
	updateErr error
	getErr    error
}

func newFakePrintRepo(records ...*models.PrintRecord) *fakePrintRepo {
	m := make(map[string]*models.PrintRecord)
	for _, r := range records {
		m[r.ID] = r
	}
	return &fakePrintRepo{records: m}
}

func (f *fakePrintRepo) Create(ctx context.Context, rec models.PrintRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Replayed insert of an existing id: the stored row wins.
	if _, ok := f.records[rec.ID]; ok {
		return nil
	}
	f.records[rec.ID] = &rec
	return nil
}

func (f *fakePrintRepo) Get(ctx context.Context, id string) (*models.PrintRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if rec, ok := f.records[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePrintRepo) SetPausedAt(ctx context.Context, id string, pausedAt *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if rec, ok := f.records[id]; ok {
		rec.PausedAt = pausedAt
	}
	return nil
}

func (f *fakePrintRepo) SetCancelledAt(ctx context.Context, id string, cancelledAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if rec, ok := f.records[id]; ok {
		rec.CancelledAt = &cancelledAt
	}
	return nil
}

func (f *fakePrintRepo) SetEndedAt(ctx context.Context, id string, endedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if rec, ok := f.records[id]; ok {
		rec.EndedAt = &endedAt
	}
	return nil
}

type fakeWatermarkRepo struct {
	marks      map[string]int
	getErr     error
	advanceErr error
	advances   []int
}

func newFakeWatermarkRepo() *fakeWatermarkRepo {
	return &fakeWatermarkRepo{marks: make(map[string]int)}
}

func (f *fakeWatermarkRepo) Create(ctx context.Context, printID string) error {
	if _, ok := f.marks[printID]; !ok {
		f.marks[printID] = 0
	}
	return nil
}

func (f *fakeWatermarkRepo) Get(ctx context.Context, printID string) (int, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.marks[printID], nil
}

func (f *fakeWatermarkRepo) Advance(ctx context.Context, printID string, pct int) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	if pct > f.marks[printID] {
		f.marks[printID] = pct
	}
	f.advances = append(f.advances, pct)
	return nil
}

type fakePrintEventRepo struct {
	events    []models.PrintEvent
	appendErr error
}

func (f *fakePrintEventRepo) Append(ctx context.Context, e models.PrintEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePrintEventRepo) List(ctx context.Context, printID string, from, to time.Time, typ string) ([]models.PrintEvent, error) {
	var out []models.PrintEvent
	for _, e := range f.events {
		if e.PrintRecordID != printID {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeSettingsRepo struct {
	stored    map[string]models.SettingsProjection
	upsertErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{stored: make(map[string]models.SettingsProjection)}
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, deviceID string, settings models.SettingsProjection) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.stored[deviceID] == nil {
		f.stored[deviceID] = models.SettingsProjection{}
	}
	for k, v := range settings {
		f.stored[deviceID][k] = v
	}
	return nil
}

func (f *fakeSettingsRepo) Get(ctx context.Context, deviceID string) (models.SettingsProjection, error) {
	return f.stored[deviceID], nil
}

// helpers shared across service tests

func int64ptr(v int64) *int64       { return &v }
func float64ptr(v float64) *float64 { return &v }
