package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
)

// LifecycleService derives discrete print-job transitions from the
// normalized stream and mutates the authoritative print record. All
// calls for one device are serialized by the ingest pipeline.
type LifecycleService struct {
	devices    repository.DeviceRepo
	prints     repository.PrintRepo
	watermarks repository.WatermarkRepo
	events     repository.PrintEventRepo
	dispatch   *DispatchService
	now        func() time.Time
}

func NewLifecycleService(
	devices repository.DeviceRepo,
	prints repository.PrintRepo,
	watermarks repository.WatermarkRepo,
	events repository.PrintEventRepo,
	dispatch *DispatchService,
) *LifecycleService {
	return &LifecycleService{
		devices:    devices,
		prints:     prints,
		watermarks: watermarks,
		events:     events,
		dispatch:   dispatch,
		now:        time.Now,
	}
}

// printRecordID derives a stable record id from the device and the
// print session timestamp, so a retried report after a partial failure
// recreates the identical record instead of a duplicate.
func printRecordID(deviceID string, startedTS int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", deviceID, startedTS))).String()
}

// Apply processes one normalized status with an active print session.
// It resolves (possibly rotating) the current print record, computes
// dispatch decisions against the still-current record, then applies the
// event's mutation, in that order. Returned calls are ready for the
// delivery collaborator.
func (s *LifecycleService) Apply(ctx context.Context, device *models.DeviceIdentity, status *models.CanonicalStatus) ([]models.LifecycleEvent, []models.OutboundCall, error) {
	if status == nil || !status.HasSession() {
		return nil, nil, nil
	}

	fileName := status.Event.FileName()
	if fileName == "" && status.JobFile != nil {
		fileName = status.JobFile.Name
	}

	record, started, err := s.resolveCurrentPrint(ctx, device, *status.PrintSessionTS, fileName)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		// No current print and no way to start one: the report is
		// ignored for lifecycle purposes.
		return nil, nil, nil
	}

	var events []models.LifecycleEvent
	if started {
		events = append(events, models.LifecycleEvent{Type: models.EventPrintStarted, Record: *record})
	}

	// Dispatch decisions must see the record while it is still
	// current; detachment below would lose its identity.
	calls, err := s.dispatch.Decide(ctx, device, record, status.Event, status.Progress)
	if err != nil {
		return nil, nil, err
	}

	ev, err := s.applyEvent(ctx, device, record, status.Event)
	if err != nil {
		return nil, nil, err
	}
	events = append(events, ev...)

	return events, calls, nil
}

// resolveCurrentPrint returns the device's current record, rotating to
// a new one when the session timestamp changed and a filename is
// available. The idempotent write order is record → watermark →
// current-print pointer; the pointer only advances after the durable
// writes succeed.
func (s *LifecycleService) resolveCurrentPrint(ctx context.Context, device *models.DeviceIdentity, startedTS int64, fileName string) (*models.PrintRecord, bool, error) {
	var current *models.PrintRecord
	if device.CurrentPrintID != nil {
		rec, err := s.prints.Get(ctx, *device.CurrentPrintID)
		if err != nil {
			return nil, false, err
		}
		current = rec
	}
	if current != nil && current.StartedTS == startedTS {
		return current, false, nil
	}

	// Session changed (or none tracked). Without a filename no record
	// can be created.
	if fileName == "" {
		return nil, false, nil
	}

	now := s.now().UTC()
	if current != nil {
		// The previous session ended without a terminal event.
		if err := s.prints.SetEndedAt(ctx, current.ID, now); err != nil {
			return nil, false, err
		}
	}

	rec := models.PrintRecord{
		ID:        printRecordID(device.ID, startedTS),
		DeviceID:  device.ID,
		FileName:  fileName,
		StartedTS: startedTS,
		CreatedAt: now,
	}
	if err := s.prints.Create(ctx, rec); err != nil {
		return nil, false, err
	}
	if err := s.watermarks.Create(ctx, rec.ID); err != nil {
		return nil, false, err
	}
	if err := s.devices.SetCurrentPrint(ctx, device.ID, &rec.ID); err != nil {
		return nil, false, err
	}
	device.CurrentPrintID = &rec.ID
	return &rec, true, nil
}

// applyEvent performs the durable mutation for a discrete transition
// and emits the corresponding lifecycle events. Only pause and resume
// are recorded in the audit trail.
func (s *LifecycleService) applyEvent(ctx context.Context, device *models.DeviceIdentity, record *models.PrintRecord, event *models.PrintEventPayload) ([]models.LifecycleEvent, error) {
	if event == nil {
		return nil, nil
	}
	now := s.now().UTC()

	switch event.Type {
	case models.EventPrintPaused:
		if err := s.prints.SetPausedAt(ctx, record.ID, &now); err != nil {
			return nil, err
		}
		record.PausedAt = &now
		if err := s.events.Append(ctx, models.PrintEvent{
			PrintRecordID: record.ID,
			OccurredAt:    now,
			Type:          models.PrintEventPaused,
		}); err != nil {
			return nil, err
		}
		return []models.LifecycleEvent{{Type: models.EventPrintPaused, Record: *record}}, nil

	case models.EventPrintResumed:
		if err := s.prints.SetPausedAt(ctx, record.ID, nil); err != nil {
			return nil, err
		}
		record.PausedAt = nil
		if err := s.events.Append(ctx, models.PrintEvent{
			PrintRecordID: record.ID,
			OccurredAt:    now,
			Type:          models.PrintEventResumed,
		}); err != nil {
			return nil, err
		}
		return []models.LifecycleEvent{{Type: models.EventPrintResumed, Record: *record}}, nil

	case models.EventPrintCancelled:
		// Cancellation is recorded but the record stays current; the
		// terminal PrintFailed usually follows.
		if err := s.prints.SetCancelledAt(ctx, record.ID, now); err != nil {
			return nil, err
		}
		record.CancelledAt = &now
		return []models.LifecycleEvent{{Type: models.EventPrintCancelled, Record: *record}}, nil

	case models.EventPrintFailed:
		// Failure is not cancellation: cancelled_at stays unset.
		if err := s.detach(ctx, device, record, now); err != nil {
			return nil, err
		}
		return []models.LifecycleEvent{{Type: models.EventPrintFailed, Record: *record}}, nil

	case models.EventPrintDone:
		if err := s.detach(ctx, device, record, now); err != nil {
			return nil, err
		}
		return []models.LifecycleEvent{{Type: models.EventPrintDone, Record: *record}}, nil
	}

	return nil, nil
}

// detach marks the record ended and drops it as the device's current
// print. Once detached it receives no further transitions.
func (s *LifecycleService) detach(ctx context.Context, device *models.DeviceIdentity, record *models.PrintRecord, now time.Time) error {
	if err := s.prints.SetEndedAt(ctx, record.ID, now); err != nil {
		return err
	}
	record.EndedAt = &now
	if err := s.devices.SetCurrentPrint(ctx, device.ID, nil); err != nil {
		return err
	}
	device.CurrentPrintID = nil
	return nil
}
