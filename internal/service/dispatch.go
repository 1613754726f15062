package service

import (
	"context"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
)

// svcWebhookEvents is the fixed set of lifecycle events forwarded to
// the third-party service webhook.
var svcWebhookEvents = map[string]bool{
	models.EventPrintStarted:   true,
	models.EventPrintPaused:    true,
	models.EventPrintResumed:   true,
	models.EventPrintCancelled: true,
	models.EventPrintFailed:    true,
	models.EventPrintDone:      true,
}

// svcNotificationEvents additionally raise an owner notification; the
// receiving service fans those out instead of just recording them.
var svcNotificationEvents = map[string]bool{
	models.EventPrintCancelled: true,
	models.EventPrintFailed:    true,
}

// svcWebhookProgressPcts are the progress milestones, fired at most
// once each per print record.
var svcWebhookProgressPcts = []int{25, 50, 75}

// DispatchService decides which outbound calls fire for one report. It
// owns the per-print progress watermark; everything else it touches is
// derived per report.
type DispatchService struct {
	watermarks repository.WatermarkRepo
}

func NewDispatchService(watermarks repository.WatermarkRepo) *DispatchService {
	return &DispatchService{watermarks: watermarks}
}

// Decide computes the outbound calls for the current report, against
// the still-current record. Without a configured service token no
// webhook calls are produced.
func (s *DispatchService) Decide(ctx context.Context, device *models.DeviceIdentity, record *models.PrintRecord, event *models.PrintEventPayload, progress *models.Progress) ([]models.OutboundCall, error) {
	if !device.HasServiceToken() {
		return nil, nil
	}

	var calls []models.OutboundCall
	if event != nil && svcWebhookEvents[event.Type] {
		calls = append(calls, models.OutboundCall{
			Kind:         models.CallWebhook,
			RecordID:     record.ID,
			ServiceToken: device.ServiceToken,
			Event:        event.Type,
		})
		if svcNotificationEvents[event.Type] {
			calls = append(calls, models.OutboundCall{
				Kind:         models.CallNotification,
				RecordID:     record.ID,
				ServiceToken: device.ServiceToken,
				Event:        event.Type,
			})
		}
	}

	progressCall, err := s.decideProgress(ctx, record, progress, device.ServiceToken)
	if err != nil {
		return nil, err
	}
	if progressCall != nil {
		calls = append(calls, *progressCall)
	}
	return calls, nil
}

// decideProgress fires the smallest not-yet-notified milestone the
// print has reached. Missing or zero progress fields suppress the call
// without touching the watermark; once a threshold is passed it never
// fires again for the same record, even if progress regresses.
func (s *DispatchService) decideProgress(ctx context.Context, record *models.PrintRecord, progress *models.Progress, serviceToken string) (*models.OutboundCall, error) {
	if progress == nil {
		return nil, nil
	}
	if progress.Completion == nil || *progress.Completion == 0 {
		return nil, nil
	}
	if progress.PrintTime == nil || *progress.PrintTime == 0 {
		return nil, nil
	}
	if progress.PrintTimeLeft == nil || *progress.PrintTimeLeft == 0 {
		return nil, nil
	}

	last, err := s.watermarks.Get(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	next := 0
	for _, pct := range svcWebhookProgressPcts {
		if pct > last {
			next = pct
			break
		}
	}
	if next == 0 {
		return nil, nil
	}

	pct := *progress.Completion * 100.0
	if pct < float64(next) {
		return nil, nil
	}

	// Advance before emitting: a failed advance means no call this
	// round, and the retried report reproduces the same decision.
	if err := s.watermarks.Advance(ctx, record.ID, next); err != nil {
		return nil, err
	}

	return &models.OutboundCall{
		Kind:         models.CallWebhook,
		RecordID:     record.ID,
		ServiceToken: serviceToken,
		Event:        models.EventPrintProgress,
		Percent:      int(pct),
		TimeLeft:     int(*progress.PrintTimeLeft),
		CurrentTime:  int(*progress.PrintTime),
	}, nil
}
