// Package monitor implements the water-quality monitoring service: it seeds a synthetic
// reading history, generates new readings on a schedule, raises threshold alerts, keeps
// the sample log and notifies subscribers whenever any of that changes.
package monitor

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"jaldrishti/internal/alerts"
	"jaldrishti/internal/broadcast"
	"jaldrishti/internal/config"
	"jaldrishti/internal/logger"
	"jaldrishti/internal/metrics"
	"jaldrishti/internal/models"
	"jaldrishti/internal/simulator"
)

// Service errors
var (
	ErrAlertNotFound   = errors.New("alert not found")
	ErrInvalidStatus   = errors.New("invalid alert status")
	ErrInvalidWindow   = errors.New("hours window must be positive")
	ErrUnknownLocation = errors.New("unknown location")
	ErrAlreadyRunning  = errors.New("simulator already running")
)

// Service owns every store. All mutations happen under mu; listeners are invoked
// after it is released so they may read from the service.
//
// publishMu is taken before mu and held until the broadcast returns, so listeners
// see snapshots in the order the mutations happened. Listeners must not mutate the
// service.
type Service struct {
	sim   config.SimulationConfig
	bcfg  config.BroadcastConfig
	clock func() time.Time
	node  string

	generator   *simulator.Generator
	evaluator   *alerts.Evaluator
	broadcaster *broadcast.Broadcaster
	events      chan<- *models.Envelope

	publishMu  sync.Mutex
	mu         sync.RWMutex
	locations  []models.Location
	teams      []models.Team
	readings   []models.Reading // chronological
	alerts     []models.Alert   // insertion order, newest last
	alertIndex map[string]int
	samples    []models.Sample // insertion order, newest last

	initialSamples []models.Sample

	schedMu   sync.Mutex
	sched     *cron.Cron
	schedDone chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithGenerator replaces the reading generator.
func WithGenerator(g *simulator.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithLocations replaces the default monitoring network.
func WithLocations(locs []models.Location) Option {
	return func(s *Service) { s.locations = locs }
}

// WithTeams replaces the default field roster.
func WithTeams(teams []models.Team) Option {
	return func(s *Service) { s.teams = teams }
}

// WithSamples replaces the initial sample log, given newest first.
func WithSamples(samples []models.Sample) Option {
	return func(s *Service) {
		if samples == nil {
			samples = []models.Sample{}
		}
		s.initialSamples = samples
	}
}

// WithEvents sets the outbound event queue. Sends never block.
func WithEvents(ch chan<- *models.Envelope) Option {
	return func(s *Service) { s.events = ch }
}

// New constructs a seeded service. The simulator is not started.
func New(cfg *config.Config, opts ...Option) *Service {
	node, _ := os.Hostname()
	if node == "" {
		node = "unknown"
	}

	s := &Service{
		sim:        cfg.Simulation,
		bcfg:       cfg.Broadcast,
		clock:      time.Now,
		node:       node,
		alertIndex: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.clock()
	if s.locations == nil {
		s.locations = simulator.DefaultLocations()
	}
	if s.teams == nil {
		s.teams = simulator.DefaultTeams(now)
	}
	if s.initialSamples == nil {
		s.initialSamples = simulator.DefaultSamples(now)
	}
	for i := len(s.initialSamples) - 1; i >= 0; i-- {
		s.samples = append(s.samples, s.initialSamples[i].Clone())
	}
	s.initialSamples = nil
	if s.generator == nil {
		s.generator = simulator.NewGenerator(cfg.Simulation.RandSeed, simulator.StatusMode(cfg.Simulation.StatusMode))
	}
	s.evaluator = alerts.NewEvaluator(
		alerts.TeamsByLocation(s.teams),
		alerts.WithSuppressWindow(cfg.Simulation.AlertSuppressWindow),
	)
	s.broadcaster = broadcast.New(broadcast.Config{SlowListener: cfg.Broadcast.SlowListener})

	s.seed(now)
	return s
}

func (s *Service) seed(now time.Time) {
	log := logger.WithComponent("monitor")

	readings := s.generator.Seed(s.locations, now, s.sim.SeedPoints, s.sim.SeedSpacing)
	slices.SortStableFunc(readings, func(a, b models.Reading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	s.readings = readings

	for _, loc := range s.locations {
		metrics.ReadingsGeneratedTotal.WithLabelValues(loc.ID, "seed").Add(float64(s.sim.SeedPoints))
	}

	log.Info().
		Int("locations", len(s.locations)).
		Int("readings", len(readings)).
		Int("samples", len(s.samples)).
		Msg("seeded reading history")
}

// Subscribe registers a snapshot listener and returns its unsubscribe handle.
// Listeners run synchronously after each mutation and may only read from the service.
func (s *Service) Subscribe(l broadcast.Listener) (unsubscribe func()) {
	return s.broadcaster.Subscribe(l)
}

// Tick generates one reading per active location, evaluates it and notifies listeners.
// A tick with no active locations does nothing.
func (s *Service) Tick() {
	log := logger.WithComponent("simulator")
	start := time.Now()
	defer func() {
		metrics.SimulatorTickDuration.Observe(time.Since(start).Seconds())
	}()

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	now := s.clock()

	s.mu.Lock()
	var (
		newReadings []models.Reading
		newAlerts   []models.Alert
	)
	for _, loc := range s.locations {
		if loc.Status != models.LocationActive {
			continue
		}
		r := s.generator.Reading(loc, now)
		s.readings = append(s.readings, r)
		newReadings = append(newReadings, r)

		for _, a := range s.evaluator.Evaluate(r, now) {
			s.insertAlertLocked(a)
			newAlerts = append(newAlerts, a)
		}
	}
	if len(newReadings) == 0 {
		s.mu.Unlock()
		metrics.SimulatorTicksTotal.WithLabelValues("idle").Inc()
		log.Debug().Msg("no active locations, tick skipped")
		return
	}
	snapshot := s.snapshotLocked(now)
	s.mu.Unlock()

	metrics.SimulatorTicksTotal.WithLabelValues("generated").Inc()
	for _, r := range newReadings {
		metrics.ReadingsGeneratedTotal.WithLabelValues(r.LocationID, "tick").Inc()
		s.emit(models.NewReadingEnvelope(r, s.node))
	}
	for _, a := range newAlerts {
		s.emit(models.NewAlertEnvelope(models.EventAlert, a, s.node))
	}

	log.Debug().
		Int("readings", len(newReadings)).
		Int("alerts", len(newAlerts)).
		Msg("tick complete")

	s.broadcaster.Publish(snapshot)
}

func (s *Service) insertAlertLocked(a models.Alert) {
	s.alertIndex[a.ID] = len(s.alerts)
	s.alerts = append(s.alerts, a)
}

// UpdateAlertStatus sets the status of alert id in place and notifies listeners.
func (s *Service) UpdateAlertStatus(id string, status models.AlertStatus) error {
	log := logger.WithAlert("monitor", id)

	if !status.IsValid() {
		metrics.AlertStatusUpdatesTotal.WithLabelValues(string(status), "invalid").Inc()
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	now := s.clock()

	s.mu.Lock()
	idx, ok := s.alertIndex[id]
	if !ok {
		s.mu.Unlock()
		metrics.AlertStatusUpdatesTotal.WithLabelValues(string(status), "not_found").Inc()
		log.Warn().Str("status", string(status)).Msg("status update for unknown alert")
		return fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	previous := s.alerts[idx].Status
	s.alerts[idx].Status = status
	updated := s.alerts[idx]
	snapshot := s.snapshotLocked(now)
	s.mu.Unlock()

	metrics.AlertStatusUpdatesTotal.WithLabelValues(string(status), "updated").Inc()
	log.Info().
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("alert status updated")

	s.emit(models.NewAlertEnvelope(models.EventAlertStatus, updated, s.node))
	s.broadcaster.Publish(snapshot)
	return nil
}

// AddSample validates in, assigns an id, records it as the newest sample and
// notifies listeners.
func (s *Service) AddSample(in models.SampleInput) (models.Sample, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	now := s.clock()

	in.Normalize()
	if err := in.Validate(now); err != nil {
		return models.Sample{}, err
	}

	sample := models.Sample{
		ID:             "SAMPLE-" + uuid.NewString(),
		LocationID:     in.LocationID,
		CollectedBy:    in.CollectedBy,
		CollectionDate: in.CollectionDate,
		SampleType:     in.SampleType,
		Status:         in.Status,
		Results:        in.Results,
		Notes:          in.Notes,
		Photos:         in.Photos,
	}
	sample = sample.Clone()
	if sample.Photos == nil {
		sample.Photos = []string{}
	}

	s.mu.Lock()
	if !s.hasLocationLocked(sample.LocationID) {
		s.mu.Unlock()
		return models.Sample{}, fmt.Errorf("%w: %s", ErrUnknownLocation, sample.LocationID)
	}
	s.samples = append(s.samples, sample)
	snapshot := s.snapshotLocked(now)
	s.mu.Unlock()

	metrics.SamplesAddedTotal.WithLabelValues(string(sample.SampleType)).Inc()
	log := logger.WithLocation("monitor", sample.LocationID)
	log.Info().
		Str("sample_id", sample.ID).
		Str("collected_by", sample.CollectedBy).
		Str("sample_type", string(sample.SampleType)).
		Msg("sample logged")

	s.emit(models.NewSampleEnvelope(sample, s.node))
	s.broadcaster.Publish(snapshot)
	return sample.Clone(), nil
}

func (s *Service) hasLocationLocked(id string) bool {
	_, ok := s.locationByIDLocked(id)
	return ok
}

func (s *Service) locationByIDLocked(id string) (models.Location, bool) {
	for _, l := range s.locations {
		if l.ID == id {
			return l, true
		}
	}
	return models.Location{}, false
}

// emit hands an envelope to the event feed without blocking.
func (s *Service) emit(e *models.Envelope) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- e:
		metrics.EventsEnqueuedTotal.WithLabelValues(string(e.Kind), "queued").Inc()
	default:
		metrics.EventsEnqueuedTotal.WithLabelValues(string(e.Kind), "dropped").Inc()
		log := logger.WithComponent("monitor")
		log.Warn().
			Str("kind", string(e.Kind)).
			Str("event_id", e.EventID()).
			Msg("event queue full, event dropped")
	}
}

func validWindow(hours float64) bool {
	return hours > 0 && !math.IsNaN(hours) && !math.IsInf(hours, 0)
}
