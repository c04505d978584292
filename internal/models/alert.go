package models

import "time"

// AlertSeverity represents the severity level of an alert
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// IsValid checks if the alert status is known
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertActive, AlertAcknowledged, AlertResolved:
		return true
	default:
		return false
	}
}

// Alert is a notification that a measurement exceeded its safety limit
type Alert struct {
	ID          string        `json:"id"`
	Severity    AlertSeverity `json:"severity"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Substance   Substance     `json:"substance"`
	Timestamp   time.Time     `json:"timestamp"`
	Value       string        `json:"value,omitempty"`
	Limit       string        `json:"limit,omitempty"`
	Team        string        `json:"team"`
	Status      AlertStatus   `json:"status"`
	// Lower is more urgent
	Priority int `json:"priority"`
}

// IsActiveCritical reports whether the alert counts toward the critical total
func (a Alert) IsActiveCritical() bool {
	return a.Status == AlertActive && a.Severity == SeverityCritical
}
