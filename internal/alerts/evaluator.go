package alerts

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jaldrishti/internal/logger"
	"jaldrishti/internal/metrics"
	"jaldrishti/internal/models"
)

// Unassigned is the team name used when no team is stationed at a location.
const Unassigned = "Unassigned"

// TeamResolver names the team responsible for a location.
type TeamResolver func(location string) string

// TeamsByLocation resolves the first team whose current location matches.
func TeamsByLocation(teams []models.Team) TeamResolver {
	return func(location string) string {
		for _, t := range teams {
			if t.CurrentLocation == location {
				return t.Name
			}
		}
		return Unassigned
	}
}

// Evaluator compares readings against the threshold table and synthesizes alerts.
type Evaluator struct {
	rules      []Rule
	team       TeamResolver
	suppressor *Suppressor
	newID      func() string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSuppressWindow drops repeat alerts for the same location and substance inside window.
func WithSuppressWindow(window time.Duration) Option {
	return func(e *Evaluator) {
		e.suppressor = NewSuppressor(window)
	}
}

// WithIDGenerator overrides alert id generation.
func WithIDGenerator(fn func() string) Option {
	return func(e *Evaluator) {
		e.newID = fn
	}
}

// NewEvaluator creates an evaluator over the fixed threshold table.
func NewEvaluator(team TeamResolver, opts ...Option) *Evaluator {
	if team == nil {
		team = func(string) string { return Unassigned }
	}
	e := &Evaluator{
		rules:      Limits(),
		team:       team,
		suppressor: NewSuppressor(0),
		newID:      func() string { return "ALT-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns one active alert per substance of r that exceeds its limit,
// in threshold-table order.
func (e *Evaluator) Evaluate(r models.Reading, now time.Time) []models.Alert {
	log := logger.WithLocation("alert_evaluator", r.LocationID)

	var out []models.Alert
	for _, rule := range e.rules {
		value, ok := r.Measurements.Value(rule.Substance)
		if !ok || !rule.Exceeded(value) {
			continue
		}

		if !e.suppressor.Allow(r.Location, rule.Substance, now) {
			metrics.AlertsSuppressedTotal.WithLabelValues(string(rule.Substance)).Inc()
			log.Debug().
				Str("substance", string(rule.Substance)).
				Float64("value", value).
				Msg("alert suppressed")
			continue
		}

		severity := rule.Severity(value)
		alert := models.Alert{
			ID:          e.newID(),
			Severity:    severity,
			Title:       fmt.Sprintf("%s levels exceeded", titleCase(string(rule.Substance))),
			Description: fmt.Sprintf("%s concentration of %s exceeds safety limit", rule.Substance, formatConcentration(value)),
			Location:    r.Location,
			Substance:   rule.Substance,
			Timestamp:   now,
			Value:       formatConcentration(value),
			Limit:       formatConcentration(rule.Limit),
			Team:        e.team(r.Location),
			Status:      models.AlertActive,
			Priority:    Priority(severity),
		}
		out = append(out, alert)

		metrics.AlertsRaisedTotal.WithLabelValues(string(rule.Substance), string(severity)).Inc()
		log.Info().
			Str("alert_id", alert.ID).
			Str("substance", string(rule.Substance)).
			Str("severity", string(severity)).
			Float64("value", value).
			Float64("limit", rule.Limit).
			Str("team", alert.Team).
			Msg("threshold exceeded")
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Suppressor remembers the last alert per (location, substance).
type Suppressor struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewSuppressor creates a suppressor. A zero window allows everything.
func NewSuppressor(window time.Duration) *Suppressor {
	return &Suppressor{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether an alert may be raised at now and records it if so.
func (s *Suppressor) Allow(location string, substance models.Substance, now time.Time) bool {
	if s.window <= 0 {
		return true
	}

	key := location + "|" + string(substance)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.last[key]; ok && now.Sub(prev) < s.window {
		return false
	}
	s.last[key] = now
	return true
}
