package models

import "time"

// DeviceIdentity is the verified identity of the printer behind a
// report. It is resolved from the device auth token before the
// ingestion pipeline runs and is never conflated with a user session.
type DeviceIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// ServiceToken enables third-party webhook dispatch for this
	// printer; empty means no integration is configured.
	ServiceToken string `json:"-"`
	// CurrentPrintID points at the record currently being printed, if
	// any. It is advanced by the lifecycle tracker only.
	CurrentPrintID *string   `json:"current_print_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasServiceToken reports whether third-party webhooks are enabled.
func (d *DeviceIdentity) HasServiceToken() bool {
	return d != nil && d.ServiceToken != ""
}

// User is an operator account for the dashboard/read API.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
