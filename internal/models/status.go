package models

import "time"

// SystemStatus is the aggregate operational view of the network
type SystemStatus struct {
	SensorsActive   int       `json:"sensors_active"`
	SensorsTotal    int       `json:"sensors_total"`
	ActiveAlerts    int       `json:"active_alerts"`
	CriticalAlerts  int       `json:"critical_alerts"`
	SystemHealth    float64   `json:"system_health"`
	LastUpdate      time.Time `json:"last_update"`
	DataPointsToday int       `json:"data_points_today"`
}

// Snapshot is what subscribers receive whenever service state changes
type Snapshot struct {
	Readings     []Reading    `json:"water_quality"`
	Alerts       []Alert      `json:"alerts"`
	SystemStatus SystemStatus `json:"system_status"`
}

// Overview groups the derived dashboard views
type Overview struct {
	ActiveAlerts     []Alert    `json:"active_alerts"`
	CriticalAlerts   []Alert    `json:"critical_alerts"`
	WarningAlerts    []Alert    `json:"warning_alerts"`
	ActiveLocations  []Location `json:"active_locations"`
	OfflineLocations []Location `json:"offline_locations"`
	ActiveTeams      []Team     `json:"active_teams"`
	PendingSamples   []Sample   `json:"pending_samples"`
	AnalyzedSamples  []Sample   `json:"analyzed_samples"`
}
