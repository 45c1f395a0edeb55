package model

type Severity string

const (
	SeverityCaution Severity = "caution"
	SeverityInfo    Severity = "info"
)

// Alert is an advisory derived from current and forecast data. It is never stored.
type Alert struct {
	Event       string   `json:"event"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}
