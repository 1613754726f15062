package models

// OutboundCallKind distinguishes webhook calls from owner
// notifications.
type OutboundCallKind string

const (
	CallWebhook      OutboundCallKind = "webhook"
	CallNotification OutboundCallKind = "notification"
)

// OutboundCall is one notification/webhook decision produced by the
// dispatcher. Actual network delivery (and its retry policy) belongs to
// the delivery collaborator.
type OutboundCall struct {
	Kind         OutboundCallKind `json:"kind"`
	RecordID     string           `json:"record_id"`
	ServiceToken string           `json:"-"`
	// Event is the lifecycle event name, or PrintProgress for a
	// milestone call.
	Event string `json:"event"`
	// Percent, TimeLeft and CurrentTime are set on progress calls only.
	Percent     int `json:"percent,omitempty"`
	TimeLeft    int `json:"timeleft,omitempty"`
	CurrentTime int `json:"currenttime,omitempty"`
}
