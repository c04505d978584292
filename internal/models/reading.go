package models

import "time"

// Substance names a measured quantity of a reading
type Substance string

const (
	SubstanceLead            Substance = "lead"
	SubstanceMercury         Substance = "mercury"
	SubstanceArsenic         Substance = "arsenic"
	SubstanceCadmium         Substance = "cadmium"
	SubstanceChromium        Substance = "chromium"
	SubstanceNickel          Substance = "nickel"
	SubstancePH              Substance = "ph"
	SubstanceTemperature     Substance = "temperature"
	SubstanceDissolvedOxygen Substance = "dissolved_oxygen"
)

// ReadingStatus is the derived safety status of a reading
type ReadingStatus string

const (
	ReadingSafe     ReadingStatus = "safe"
	ReadingWarning  ReadingStatus = "warning"
	ReadingCritical ReadingStatus = "critical"
)

// Measurements holds one value per substance. Metals are in mg/L.
type Measurements struct {
	Lead            float64 `json:"lead"`
	Mercury         float64 `json:"mercury"`
	Arsenic         float64 `json:"arsenic"`
	Cadmium         float64 `json:"cadmium"`
	Chromium        float64 `json:"chromium"`
	Nickel          float64 `json:"nickel"`
	PH              float64 `json:"ph"`
	Temperature     float64 `json:"temperature"`
	DissolvedOxygen float64 `json:"dissolved_oxygen"`
}

// Value returns the measurement for substance s
func (m Measurements) Value(s Substance) (float64, bool) {
	switch s {
	case SubstanceLead:
		return m.Lead, true
	case SubstanceMercury:
		return m.Mercury, true
	case SubstanceArsenic:
		return m.Arsenic, true
	case SubstanceCadmium:
		return m.Cadmium, true
	case SubstanceChromium:
		return m.Chromium, true
	case SubstanceNickel:
		return m.Nickel, true
	case SubstancePH:
		return m.PH, true
	case SubstanceTemperature:
		return m.Temperature, true
	case SubstanceDissolvedOxygen:
		return m.DissolvedOxygen, true
	default:
		return 0, false
	}
}

// Set stores v for substance s, reporting whether s is known
func (m *Measurements) Set(s Substance, v float64) bool {
	switch s {
	case SubstanceLead:
		m.Lead = v
	case SubstanceMercury:
		m.Mercury = v
	case SubstanceArsenic:
		m.Arsenic = v
	case SubstanceCadmium:
		m.Cadmium = v
	case SubstanceChromium:
		m.Chromium = v
	case SubstanceNickel:
		m.Nickel = v
	case SubstancePH:
		m.PH = v
	case SubstanceTemperature:
		m.Temperature = v
	case SubstanceDissolvedOxygen:
		m.DissolvedOxygen = v
	default:
		return false
	}
	return true
}

// Reading is one timestamped measurement set at a location. Never mutated after creation.
type Reading struct {
	ID             string        `json:"id"`
	Location       string        `json:"location"`
	LocationID     string        `json:"location_id"`
	Timestamp      time.Time     `json:"timestamp"`
	Measurements   Measurements  `json:"measurements"`
	Status         ReadingStatus `json:"status"`
	SensorID       string        `json:"sensor_id"`
	GPSCoordinates Coordinates   `json:"gps_coordinates"`
}
