package models

import "time"

// LocationStatus is the operational state of a monitoring site
type LocationStatus string

const (
	LocationActive      LocationStatus = "active"
	LocationMaintenance LocationStatus = "maintenance"
	LocationOffline     LocationStatus = "offline"
)

// IsValid checks if the location status is known
func (s LocationStatus) IsValid() bool {
	switch s {
	case LocationActive, LocationMaintenance, LocationOffline:
		return true
	default:
		return false
	}
}

// TeamStatus is the availability of a field team
type TeamStatus string

const (
	TeamActive  TeamStatus = "active"
	TeamOffline TeamStatus = "offline"
	TeamEnRoute TeamStatus = "en-route"
)

// Coordinates is a GPS latitude/longitude pair
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a fixed monitoring site on a river
type Location struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Coordinates      Coordinates    `json:"coordinates"`
	RiverName        string         `json:"river_name"`
	State            string         `json:"state"`
	District         string         `json:"district"`
	Sensors          []string       `json:"sensors"`
	Status           LocationStatus `json:"status"`
	LastMaintenance  time.Time      `json:"last_maintenance"`
	InstallationDate time.Time      `json:"installation_date"`
}

// PrimarySensor returns the sensor that reports readings for the site
func (l Location) PrimarySensor() string {
	if len(l.Sensors) == 0 {
		return ""
	}
	return l.Sensors[0]
}

// Clone returns a copy that shares no slices with l
func (l Location) Clone() Location {
	l.Sensors = append([]string(nil), l.Sensors...)
	return l
}

// Team is a field unit responsible for one or more sites
type Team struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Leader          string     `json:"leader"`
	Members         []string   `json:"members"`
	CurrentLocation string     `json:"current_location"`
	Status          TeamStatus `json:"status"`
	AssignedSites   []string   `json:"assigned_sites"`
	LastUpdate      time.Time  `json:"last_update"`
}

// Clone returns a copy that shares no slices with t
func (t Team) Clone() Team {
	t.Members = append([]string(nil), t.Members...)
	t.AssignedSites = append([]string(nil), t.AssignedSites...)
	return t
}
