package models

import "time"

// Lifecycle event types as reported on the wire and dispatched to the
// service webhook.
const (
	EventPrintStarted   = "PrintStarted"
	EventPrintPaused    = "PrintPaused"
	EventPrintResumed   = "PrintResumed"
	EventPrintCancelled = "PrintCancelled"
	EventPrintFailed    = "PrintFailed"
	EventPrintDone      = "PrintDone"
	EventPrintProgress  = "PrintProgress"
)

// PrintEvent audit log entry types. Only pause and resume are logged.
const (
	PrintEventPaused  = "PAUSED"
	PrintEventResumed = "RESUMED"
)

// PrintRecord is the durable record of one print attempt. StartedTS is
// the print session timestamp that created it. Once detached as the
// device's current print it receives no further transitions.
type PrintRecord struct {
	ID          string     `json:"id"`
	DeviceID    string     `json:"device_id"`
	FileName    string     `json:"filename"`
	StartedTS   int64      `json:"started_ts"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProgressWatermark suppresses duplicate progress notifications for one
// print record. LastNotifiedPct only ever advances; a new record gets a
// fresh watermark.
type ProgressWatermark struct {
	PrintRecordID   string `json:"print_record_id"`
	LastNotifiedPct int    `json:"last_notified_pct"`
}

// PrintEvent is one append-only audit log entry for a print record.
type PrintEvent struct {
	EventID       string    `json:"event_id"`
	PrintRecordID string    `json:"print_record_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	Type          string    `json:"type"` // PAUSED | RESUMED
}

// LifecycleEvent is a discrete transition derived from the telemetry
// stream, paired with the record it applies to.
type LifecycleEvent struct {
	Type   string      `json:"type"`
	Record PrintRecord `json:"record"`
}
