package monitor

import (
	"fmt"
	"slices"
	"time"

	"jaldrishti/internal/models"
)

// WaterQualityData returns readings from the last hours, optionally restricted to one
// location, oldest first.
func (s *Service) WaterQualityData(locationID string, hours float64) ([]models.Reading, error) {
	if !validWindow(hours) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, hours)
	}

	now := s.clock()
	cutoff := now.Add(-time.Duration(hours * float64(time.Hour)))

	s.mu.RLock()
	defer s.mu.RUnlock()

	locationName := ""
	if locationID != "" {
		loc, ok := s.locationByIDLocked(locationID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, locationID)
		}
		locationName = loc.Name
	}

	out := make([]models.Reading, 0)
	for _, r := range s.readings {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		if locationName != "" && r.Location != locationName {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b models.Reading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

// LatestReadings returns the newest reading of every location that has one, in
// location order.
func (s *Service) LatestReadings() []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked()
}

func (s *Service) latestLocked() []models.Reading {
	latest := make(map[string]models.Reading, len(s.locations))
	for _, r := range s.readings {
		if cur, ok := latest[r.Location]; !ok || !r.Timestamp.Before(cur.Timestamp) {
			latest[r.Location] = r
		}
	}

	out := make([]models.Reading, 0, len(latest))
	for _, loc := range s.locations {
		if r, ok := latest[loc.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Alerts returns alerts newest first, optionally filtered by status. Alerts sharing a
// timestamp are ordered most recently created first.
func (s *Service) Alerts(status models.AlertStatus) ([]models.Alert, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if status == "" || s.alerts[i].Status == status {
			out = append(out, s.alerts[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.Alert) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}

// Locations returns the monitoring network.
func (s *Service) Locations() []models.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Location, len(s.locations))
	for i, l := range s.locations {
		out[i] = l.Clone()
	}
	return out
}

// Teams returns the field roster.
func (s *Service) Teams() []models.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = t.Clone()
	}
	return out
}

// Samples returns samples newest collection date first, optionally for one location.
func (s *Service) Samples(locationID string) []models.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Sample, 0, len(s.samples))
	for i := len(s.samples) - 1; i >= 0; i-- {
		if locationID == "" || s.samples[i].LocationID == locationID {
			out = append(out, s.samples[i].Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Sample) int {
		return b.CollectionDate.Compare(a.CollectionDate)
	})
	return out
}

// SystemStatus computes the aggregate operational view.
func (s *Service) SystemStatus() models.SystemStatus {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(now)
}

func (s *Service) statusLocked(now time.Time) models.SystemStatus {
	st := models.SystemStatus{
		SensorsTotal: len(s.locations),
		LastUpdate:   now,
	}
	for _, l := range s.locations {
		if l.Status == models.LocationActive {
			st.SensorsActive++
		}
	}
	if st.SensorsTotal > 0 {
		st.SystemHealth = float64(st.SensorsActive) / float64(st.SensorsTotal)
	}

	for _, a := range s.alerts {
		if a.Status == models.AlertActive {
			st.ActiveAlerts++
		}
		if a.IsActiveCritical() {
			st.CriticalAlerts++
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, r := range s.readings {
		if !r.Timestamp.Before(midnight) {
			st.DataPointsToday++
		}
	}
	return st
}

// Snapshot returns what subscribers would receive right now.
func (s *Service) Snapshot() models.Snapshot {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(now)
}

func (s *Service) snapshotLocked(now time.Time) models.Snapshot {
	from := max(0, len(s.readings)-s.bcfg.RecentReadings)
	readings := append([]models.Reading(nil), s.readings[from:]...)

	n := min(len(s.alerts), s.bcfg.RecentAlerts)
	recent := make([]models.Alert, 0, n)
	for i := len(s.alerts) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, s.alerts[i])
	}

	return models.Snapshot{
		Readings:     readings,
		Alerts:       recent,
		SystemStatus: s.statusLocked(now),
	}
}

// Overview returns the derived views the dashboard groups its panels by.
func (s *Service) Overview() models.Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ov := models.Overview{
		ActiveAlerts:     []models.Alert{},
		CriticalAlerts:   []models.Alert{},
		WarningAlerts:    []models.Alert{},
		ActiveLocations:  []models.Location{},
		OfflineLocations: []models.Location{},
		ActiveTeams:      []models.Team{},
		PendingSamples:   []models.Sample{},
		AnalyzedSamples:  []models.Sample{},
	}

	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if a.Status != models.AlertActive {
			continue
		}
		ov.ActiveAlerts = append(ov.ActiveAlerts, a)
		switch a.Severity {
		case models.SeverityCritical:
			ov.CriticalAlerts = append(ov.CriticalAlerts, a)
		case models.SeverityWarning:
			ov.WarningAlerts = append(ov.WarningAlerts, a)
		}
	}

	for _, l := range s.locations {
		switch l.Status {
		case models.LocationActive:
			ov.ActiveLocations = append(ov.ActiveLocations, l.Clone())
		case models.LocationOffline:
			ov.OfflineLocations = append(ov.OfflineLocations, l.Clone())
		}
	}

	for _, t := range s.teams {
		if t.Status == models.TeamActive {
			ov.ActiveTeams = append(ov.ActiveTeams, t.Clone())
		}
	}

	for i := len(s.samples) - 1; i >= 0; i-- {
		sm := s.samples[i]
		switch {
		case sm.Status.IsPending():
			ov.PendingSamples = append(ov.PendingSamples, sm.Clone())
		case sm.Status == models.SampleAnalyzed:
			ov.AnalyzedSamples = append(ov.AnalyzedSamples, sm.Clone())
		}
	}
	return ov
}
