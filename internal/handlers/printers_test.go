package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/service"
)

func getWithAuth(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetPrinterStatus_AuthAndBody(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{status: &models.CanonicalStatus{
		DeviceID: "p1",
		State:    models.PrinterState{Text: "Printing", Flags: models.StateFlags{Printing: true}},
	}}
	s := &service.Service{Authorization: auth, Monitoring: mon}
	r := newTestRouter(s)

	// requires auth → 401 without header
	w := getWithAuth(t, r, "/api/v1/printers/p1/status", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = getWithAuth(t, r, "/api/v1/printers/p1/status", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var st models.CanonicalStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if st.DeviceID != "p1" || st.State.Text != "Printing" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestGetPrinterStatus_NoRecentStatusIs404(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    &mockMonitoring{status: nil},
	}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/printers/p1/status", "valid")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for stale printer, got %d", w.Code)
	}
}

func TestGetCurrentPrint(t *testing.T) {
	rec := &models.PrintRecord{ID: "rec-1", DeviceID: "p1", FileName: "benchy.gcode", StartedTS: 1601643000}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    &mockMonitoring{currentRec: rec},
	}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/printers/p1/print", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Print *models.PrintRecord `json:"print"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Print == nil || resp.Print.ID != "rec-1" || resp.Print.FileName != "benchy.gcode" {
		t.Fatalf("unexpected record: %+v", resp.Print)
	}
}

func TestGetCurrentPrint_UnknownPrinterIs404(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    &mockMonitoring{currentErr: service.ErrDeviceNotFound},
	}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/printers/nope/print", "valid")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetPrinterSettings(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    &mockMonitoring{settings: models.SettingsProjection{"webcam_flipH": "true", "webcam_streamRatio": "16:9"}},
	}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/printers/p1/settings", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Settings models.SettingsProjection `json:"settings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Settings["webcam_flipH"] != "true" || resp.Settings["webcam_streamRatio"] != "16:9" {
		t.Fatalf("unexpected settings: %+v", resp.Settings)
	}
}

func TestGetPrinterSettings_UnknownPrinterIs404(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    &mockMonitoring{settingsErr: service.ErrDeviceNotFound},
	}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/printers/nope/settings", "valid")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetPrintEvents_FilterParsing(t *testing.T) {
	mon := &mockMonitoring{events: []models.PrintEvent{
		{EventID: "e1", PrintRecordID: "rec-1", Type: "PAUSED"},
		{EventID: "e2", PrintRecordID: "rec-1", Type: "RESUMED"},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Monitoring: mon}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/prints/rec-1/events?from=2026-03-01&to=2026-03-02&type=paused", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	if mon.lastPrintID != "rec-1" {
		t.Fatalf("print id not forwarded: %q", mon.lastPrintID)
	}
	if mon.lastFilter.Type != "PAUSED" {
		t.Fatalf("type not normalized: %q", mon.lastFilter.Type)
	}
	wantFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !mon.lastFilter.From.Equal(wantFrom) {
		t.Fatalf("from=%v want %v", mon.lastFilter.From, wantFrom)
	}
	// date-only "to" becomes end-of-day inclusive
	if mon.lastFilter.To.Before(time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("to not end-of-day: %v", mon.lastFilter.To)
	}

	var resp struct {
		Count  int                 `json:"count"`
		Events []models.PrintEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || len(resp.Events) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestGetPrintEvents_BadRange(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Monitoring: &mockMonitoring{}}
	r := newTestRouter(s)

	w := getWithAuth(t, r, "/api/v1/prints/rec-1/events?from=2026-03-02&to=2026-03-01", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}

	w = getWithAuth(t, r, "/api/v1/prints/rec-1/events?from=not-a-date", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad from, got %d", w.Code)
	}
}
