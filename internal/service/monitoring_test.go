package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/statuscache"
)

func TestMonitoring_GetStatus(t *testing.T) {
	cache := statuscache.New()
	svc := NewMonitoringService(cache, newFakeDeviceRepo(), newFakePrintRepo(), &fakePrintEventRepo{}, newFakeSettingsRepo())

	if got := svc.GetStatus("dev-1"); got != nil {
		t.Fatalf("expected nil for unknown device, got %+v", got)
	}

	cache.Set("dev-1", &models.CanonicalStatus{DeviceID: "dev-1", State: models.PrinterState{Text: "Printing"}}, time.Minute)
	got := svc.GetStatus("dev-1")
	if got == nil || got.State.Text != "Printing" {
		t.Fatalf("expected cached status, got %+v", got)
	}
}

func TestMonitoring_GetCurrentPrint(t *testing.T) {
	recID := "rec-1"
	device := &models.DeviceIdentity{ID: "dev-1", CurrentPrintID: &recID}
	devices := newFakeDeviceRepo(device)
	prints := newFakePrintRepo(&models.PrintRecord{ID: recID, DeviceID: "dev-1", FileName: "benchy.gcode"})
	svc := NewMonitoringService(statuscache.New(), devices, prints, &fakePrintEventRepo{}, newFakeSettingsRepo())

	rec, err := svc.GetCurrentPrint(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("GetCurrentPrint returned error: %v", err)
	}
	if rec == nil || rec.FileName != "benchy.gcode" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestMonitoring_GetCurrentPrint_NoActivePrint(t *testing.T) {
	devices := newFakeDeviceRepo(&models.DeviceIdentity{ID: "dev-1"})
	svc := NewMonitoringService(statuscache.New(), devices, newFakePrintRepo(), &fakePrintEventRepo{}, newFakeSettingsRepo())

	rec, err := svc.GetCurrentPrint(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("GetCurrentPrint returned error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestMonitoring_GetCurrentPrint_UnknownDevice(t *testing.T) {
	svc := NewMonitoringService(statuscache.New(), newFakeDeviceRepo(), newFakePrintRepo(), &fakePrintEventRepo{}, newFakeSettingsRepo())

	_, err := svc.GetCurrentPrint(context.Background(), "ghost")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestMonitoring_GetSettings(t *testing.T) {
	devices := newFakeDeviceRepo(&models.DeviceIdentity{ID: "dev-1"})
	settings := newFakeSettingsRepo()
	settings.stored["dev-1"] = models.SettingsProjection{"webcam_flipH": "true"}
	svc := NewMonitoringService(statuscache.New(), devices, newFakePrintRepo(), &fakePrintEventRepo{}, settings)

	got, err := svc.GetSettings(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("GetSettings returned error: %v", err)
	}
	if got["webcam_flipH"] != "true" {
		t.Fatalf("unexpected projection: %+v", got)
	}

	if _, err := svc.GetSettings(context.Background(), "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestMonitoring_ListPrintEvents(t *testing.T) {
	audit := &fakePrintEventRepo{events: []models.PrintEvent{
		{EventID: "ev-1", PrintRecordID: "rec-1", Type: "PAUSED"},
		{EventID: "ev-2", PrintRecordID: "rec-1", Type: "RESUMED"},
		{EventID: "ev-3", PrintRecordID: "rec-2", Type: "PAUSED"},
	}}
	svc := NewMonitoringService(statuscache.New(), newFakeDeviceRepo(), newFakePrintRepo(), audit, newFakeSettingsRepo())

	got, err := svc.ListPrintEvents(context.Background(), "rec-1", EventFilter{})
	if err != nil {
		t.Fatalf("ListPrintEvents returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}

	got, err = svc.ListPrintEvents(context.Background(), "rec-1", EventFilter{Type: "PAUSED"})
	if err != nil {
		t.Fatalf("ListPrintEvents returned error: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "ev-1" {
		t.Fatalf("unexpected filtered events: %+v", got)
	}
}

func TestMonitoring_ListPrintEvents_InvalidRange(t *testing.T) {
	svc := NewMonitoringService(statuscache.New(), newFakeDeviceRepo(), newFakePrintRepo(), &fakePrintEventRepo{}, newFakeSettingsRepo())

	later := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListPrintEvents(context.Background(), "rec-1", EventFilter{From: later, To: earlier})
	if err == nil {
		t.Fatalf("expected error for inverted time range")
	}
}
