package models

// SourceFormat tags the wire format a raw report arrived in.
type SourceFormat string

const (
	FormatOctoPrint SourceFormat = "octoprint"
	FormatMoonraker SourceFormat = "moonraker"
)

// OctoPrintReport is the agent-format wire payload.
type OctoPrintReport struct {
	Data         *OctoPrintData                `json:"octoprint_data"`
	Temperatures map[string]TemperatureReading `json:"octoprint_temperatures"`
	Settings     *OctoPrintSettings            `json:"octoprint_settings"`
	Event        *PrintEventPayload            `json:"octoprint_event"`
	// CurrentPrintTS is the print session timestamp; absent or -1
	// means no active print.
	CurrentPrintTS *int64 `json:"current_print_ts"`
}

// OctoPrintData is the state/job/progress block of an agent report.
type OctoPrintData struct {
	State    *PrinterState      `json:"state"`
	Job      *OctoPrintJob      `json:"job"`
	Progress *OctoPrintProgress `json:"progress"`
}

type OctoPrintJob struct {
	File               *JobFile `json:"file"`
	EstimatedPrintTime *float64 `json:"estimatedPrintTime"`
	User               string   `json:"user"`
}

// OctoPrintProgress reports completion as a percentage in [0,100].
type OctoPrintProgress struct {
	Completion          *float64 `json:"completion"`
	FilePos             *int64   `json:"filepos"`
	PrintTime           *float64 `json:"printTime"`
	PrintTimeLeft       *float64 `json:"printTimeLeft"`
	PrintTimeLeftOrigin string   `json:"printTimeLeftOrigin"`
}

// OctoPrintSettings is the settings sub-object an agent report may
// carry; it is projected into a flat SettingsProjection.
type OctoPrintSettings struct {
	Webcam          map[string]any      `json:"webcam"`
	Temperature     *TemperatureProfile `json:"temperature"`
	PrinterMetadata map[string]any      `json:"printer_metadata"`
}

type TemperatureProfile struct {
	Profiles []map[string]any `json:"profiles"`
}

// MoonrakerReport is the alternate-firmware wire payload. It reports a
// coarse flag/kflag pair instead of the agent's boolean flag set.
type MoonrakerReport struct {
	PrinterState *MoonrakerPrinterState        `json:"printer_state"`
	Temperatures map[string]TemperatureReading `json:"temperatures"`
	Settings     *OctoPrintSettings            `json:"settings"`
}

type MoonrakerPrinterState struct {
	Flag           string                `json:"flag"`
	PrintEvent     string                `json:"print_event"`
	CurrentPrintTS *int64                `json:"current_print_ts"`
	FileName       string                `json:"filename"`
	KlippyState    *MoonrakerKlippyState `json:"klippy_state"`
}

// MoonrakerKlippyState carries Klipper's print_stats view.
type MoonrakerKlippyState struct {
	PrintStatsState    string   `json:"print_stats__state"`
	Message            string   `json:"message"`
	Progress           *float64 `json:"progress"`
	FilePosition       *int64   `json:"file_position"`
	PrintTime          *float64 `json:"print_time"`
	EstimatedPrintTime *float64 `json:"estimated_print_time"`
}
