package models

import "time"

// NoPrintSession is the sentinel the agent sends when no print is in
// progress; a report carrying it is ignored for lifecycle purposes.
const NoPrintSession int64 = -1

// StateFlags mirrors the boolean flag set reported by the agent. The
// Moonraker path synthesizes the same set from its flag/kflag pair.
type StateFlags struct {
	Operational   bool `json:"operational"`
	Printing      bool `json:"printing"`
	Cancelling    bool `json:"cancelling"`
	Pausing       bool `json:"pausing"`
	Resuming      bool `json:"resuming"`
	Finishing     bool `json:"finishing"`
	ClosedOrError bool `json:"closedOrError"`
	Error         bool `json:"error"`
	Paused        bool `json:"paused"`
	Ready         bool `json:"ready"`
	SdReady       bool `json:"sdReady"`
}

// PrinterState is the high-level state of the printer with its
// human-readable description.
type PrinterState struct {
	Text  string     `json:"text"`
	Flags StateFlags `json:"flags"`
}

// Progress describes how far along the current print is. Completion is
// always a fraction in [0,1]; nil fields were absent from the source
// report.
type Progress struct {
	Completion          *float64 `json:"completion,omitempty"`
	FilePosition        *int64   `json:"filepos,omitempty"`
	PrintTime           *float64 `json:"printTime,omitempty"`
	PrintTimeLeft       *float64 `json:"printTimeLeft,omitempty"`
	PrintTimeLeftOrigin string   `json:"printTimeLeftOrigin,omitempty"`
}

// JobFile identifies the file being printed.
type JobFile struct {
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	Origin string `json:"origin,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

// TemperatureReading is one heater's actual/target/offset triple. Any
// field may be null on the wire (e.g. an unfitted chamber sensor).
type TemperatureReading struct {
	Actual *float64 `json:"actual"`
	Target *float64 `json:"target"`
	Offset *float64 `json:"offset"`
}

// PrintEventPayload carries a discrete transition signalled by the
// source, e.g. PrintPaused. Data holds the raw event payload; for
// PrintStarted it includes the file name.
type PrintEventPayload struct {
	Type string         `json:"event_type"`
	Data map[string]any `json:"data,omitempty"`
}

// FileName returns the job file name embedded in the event payload, if
// any.
func (p *PrintEventPayload) FileName() string {
	if p == nil || p.Data == nil {
		return ""
	}
	if name, ok := p.Data["name"].(string); ok {
		return name
	}
	return ""
}

// CanonicalStatus is the normalized form of one telemetry report. It is
// a fresh value per report and never aliases the raw payload.
type CanonicalStatus struct {
	DeviceID     string                        `json:"device_id"`
	State        PrinterState                  `json:"state"`
	Progress     *Progress                     `json:"progress,omitempty"`
	JobFile      *JobFile                      `json:"job_file,omitempty"`
	Temperatures map[string]TemperatureReading `json:"temperatures,omitempty"`
	Event        *PrintEventPayload            `json:"event,omitempty"`
	// PrintSessionTS correlates all reports of one physical print
	// attempt. Nil or NoPrintSession means no active session.
	PrintSessionTS *int64    `json:"print_session_ts,omitempty"`
	ReceivedAt     time.Time `json:"received_at"`
}

// HasSession reports whether the status carries a usable print session
// timestamp.
func (s *CanonicalStatus) HasSession() bool {
	return s.PrintSessionTS != nil && *s.PrintSessionTS != NoPrintSession
}

// SettingsProjection is the flat key-value view of printer settings
// extracted from a report (webcam_* keys, JSON blobs for temperature
// profiles and printer metadata). Last write wins, no history.
type SettingsProjection map[string]string
