package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

// ErrUnsupportedFormat classifies reports in a source format the
// normalizer does not speak. No partial normalization is attempted.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// NormalizedReport is the normalizer's output: the canonical status,
// any settings projection the report carried, and whether the report
// signalled "no active print state" (which must delete, not merely
// expire, the cached status).
type NormalizedReport struct {
	Status   *models.CanonicalStatus
	Settings models.SettingsProjection
	Offline  bool
}

type NormalizerService struct{}

func NewNormalizer() *NormalizerService { return &NormalizerService{} }

// Normalize translates one raw report into the canonical schema. Every
// source field is optional; absent fields are omitted rather than
// failing the report.
func (n *NormalizerService) Normalize(deviceID string, format models.SourceFormat, raw []byte) (*NormalizedReport, error) {
	switch format {
	case models.FormatOctoPrint:
		return n.normalizeOctoPrint(deviceID, raw)
	case models.FormatMoonraker:
		return n.normalizeMoonraker(deviceID, raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (n *NormalizerService) normalizeOctoPrint(deviceID string, raw []byte) (*NormalizedReport, error) {
	var report models.OctoPrintReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode octoprint report: %w", err)
	}

	out := &NormalizedReport{}
	if report.Settings != nil {
		out.Settings = projectSettings(report.Settings)
	}

	// No top-level print state means the agent lost its printer.
	if report.Data == nil || report.Data.State == nil {
		out.Offline = true
		out.Status = offlineStatus(deviceID)
		return out, nil
	}

	status := &models.CanonicalStatus{
		DeviceID:   deviceID,
		State:      *report.Data.State,
		Event:      report.Event,
		ReceivedAt: time.Now().UTC(),
	}
	if ts := report.CurrentPrintTS; ts != nil && *ts != models.NoPrintSession {
		status.PrintSessionTS = ts
	}
	if len(report.Temperatures) > 0 {
		status.Temperatures = copyTemperatures(report.Temperatures)
	}
	if job := report.Data.Job; job != nil && job.File != nil {
		f := *job.File
		status.JobFile = &f
	}
	if p := report.Data.Progress; p != nil {
		status.Progress = octoPrintProgress(p, report.Data.Job)
	}
	out.Status = status
	return out, nil
}

// octoPrintProgress converts an agent progress block to the canonical
// form. The agent reports completion in [0,100]; canonical completion
// is the [0,1] fraction.
func octoPrintProgress(p *models.OctoPrintProgress, job *models.OctoPrintJob) *models.Progress {
	out := &models.Progress{
		FilePosition:        p.FilePos,
		PrintTime:           p.PrintTime,
		PrintTimeLeft:       p.PrintTimeLeft,
		PrintTimeLeftOrigin: p.PrintTimeLeftOrigin,
	}
	if p.Completion != nil {
		frac := *p.Completion / 100.0
		out.Completion = &frac
	}
	// Fall back to the job's estimate when the agent supplies no
	// explicit time-left.
	if out.PrintTimeLeft == nil && p.PrintTime != nil && job != nil && job.EstimatedPrintTime != nil {
		left := *job.EstimatedPrintTime - *p.PrintTime
		if left < 0 {
			left = 0
		}
		out.PrintTimeLeft = &left
	}
	return out
}

// moonrakerStateText maps the coarse klippy print_stats state onto the
// agent-format state descriptions the rest of the pipeline expects.
func moonrakerStateText(kflag, message string) string {
	switch kflag {
	case "standby", "complete":
		return "Operational"
	case "printing":
		return "Printing"
	case "paused":
		return "Paused"
	case "error":
		if strings.Contains(message, "error") {
			return message
		}
		return "error: " + message
	default:
		return ""
	}
}

func (n *NormalizerService) normalizeMoonraker(deviceID string, raw []byte) (*NormalizedReport, error) {
	var report models.MoonrakerReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode moonraker report: %w", err)
	}

	out := &NormalizedReport{}
	if report.Settings != nil {
		out.Settings = projectSettings(report.Settings)
	}

	pstate := report.PrinterState
	if pstate == nil || pstate.KlippyState == nil {
		out.Offline = true
		out.Status = offlineStatus(deviceID)
		return out, nil
	}

	kstate := pstate.KlippyState
	flag := pstate.Flag
	kflag := kstate.PrintStatsState

	status := &models.CanonicalStatus{
		DeviceID: deviceID,
		State: models.PrinterState{
			Text: moonrakerStateText(kflag, kstate.Message),
			Flags: models.StateFlags{
				Operational: flag == "idle",
				Printing:    flag == "printing",
				Pausing:     flag == "pausing",
				Resuming:    flag == "resuming",
				Error:       kflag == "error",
				Paused:      flag == "paused",
			},
		},
		ReceivedAt: time.Now().UTC(),
	}
	if ts := pstate.CurrentPrintTS; ts != nil && *ts != models.NoPrintSession {
		status.PrintSessionTS = ts
	}
	if pstate.PrintEvent != "" {
		status.Event = &models.PrintEventPayload{Type: pstate.PrintEvent}
	}
	if pstate.FileName != "" {
		status.JobFile = &models.JobFile{Name: pstate.FileName}
	}
	if len(report.Temperatures) > 0 {
		status.Temperatures = copyTemperatures(report.Temperatures)
	}
	status.Progress = moonrakerProgress(kstate)

	out.Status = status
	return out, nil
}

// moonrakerProgress converts the klippy print_stats view. Klipper
// reports completion as a [0,1] fraction already; time-left is derived
// from the estimate, clamped at zero.
func moonrakerProgress(kstate *models.MoonrakerKlippyState) *models.Progress {
	out := &models.Progress{
		Completion:   kstate.Progress,
		FilePosition: kstate.FilePosition,
	}
	printTime := 0.0
	if kstate.PrintTime != nil {
		printTime = *kstate.PrintTime
	}
	out.PrintTime = &printTime
	estimate := 0.0
	if kstate.EstimatedPrintTime != nil {
		estimate = *kstate.EstimatedPrintTime
	}
	left := estimate - printTime
	if left < 0 {
		left = 0
	}
	out.PrintTimeLeft = &left
	return out
}

// offlineStatus is the canonical form of "the source reports no printer
// state at all": disconnected, no session, nothing else.
func offlineStatus(deviceID string) *models.CanonicalStatus {
	return &models.CanonicalStatus{
		DeviceID: deviceID,
		State: models.PrinterState{
			Text:  "Disconnected",
			Flags: models.StateFlags{ClosedOrError: true},
		},
		ReceivedAt: time.Now().UTC(),
	}
}

// projectSettings flattens a settings sub-object into the key-value
// projection: webcam_<key> entries plus JSON blobs for temperature
// profiles and printer metadata.
func projectSettings(s *models.OctoPrintSettings) models.SettingsProjection {
	out := models.SettingsProjection{}
	for k, v := range s.Webcam {
		out["webcam_"+k] = fmt.Sprintf("%v", v)
	}
	profiles := []map[string]any{}
	if s.Temperature != nil && s.Temperature.Profiles != nil {
		profiles = s.Temperature.Profiles
	}
	if b, err := json.Marshal(profiles); err == nil {
		out["temp_profiles"] = string(b)
	}
	metadata := map[string]any{}
	if s.PrinterMetadata != nil {
		metadata = s.PrinterMetadata
	}
	if b, err := json.Marshal(metadata); err == nil {
		out["printer_metadata"] = string(b)
	}
	return out
}

func copyTemperatures(src map[string]models.TemperatureReading) map[string]models.TemperatureReading {
	out := make(map[string]models.TemperatureReading, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
