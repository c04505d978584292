package simulator

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"jaldrishti/internal/alerts"
	"jaldrishti/internal/models"
)

// StatusMode selects how a generated reading gets its status.
type StatusMode string

const (
	// StatusThreshold derives status from the alert threshold table.
	StatusThreshold StatusMode = "threshold"
	// StatusRandom rolls 80% safe, 15% warning, 5% critical regardless of values.
	StatusRandom StatusMode = "random"
)

// Baseline is the center and full spread of a synthetic value.
type Baseline struct {
	Mean   float64
	Spread float64
}

// Baselines is the per-substance distribution used for every synthetic reading.
var Baselines = map[models.Substance]Baseline{
	models.SubstanceLead:            {Mean: 0.008, Spread: 0.004},
	models.SubstanceMercury:         {Mean: 0.0018, Spread: 0.001},
	models.SubstanceArsenic:         {Mean: 0.010, Spread: 0.005},
	models.SubstanceCadmium:         {Mean: 0.004, Spread: 0.002},
	models.SubstanceChromium:        {Mean: 0.045, Spread: 0.020},
	models.SubstanceNickel:          {Mean: 0.015, Spread: 0.008},
	models.SubstancePH:              {Mean: 7.2, Spread: 1.0},
	models.SubstanceTemperature:     {Mean: 25, Spread: 5},
	models.SubstanceDissolvedOxygen: {Mean: 8.5, Spread: 2.0},
}

// drawOrder fixes the order values are drawn so a seed reproduces a reading.
var drawOrder = []models.Substance{
	models.SubstanceLead,
	models.SubstanceMercury,
	models.SubstanceArsenic,
	models.SubstanceCadmium,
	models.SubstanceChromium,
	models.SubstanceNickel,
	models.SubstancePH,
	models.SubstanceTemperature,
	models.SubstanceDissolvedOxygen,
}

// Generator synthesizes readings. Safe for concurrent use.
type Generator struct {
	mode  StatusMode
	newID func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A zero seed picks one from the clock.
func NewGenerator(seed uint64, mode StatusMode) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if mode == "" {
		mode = StatusThreshold
	}
	return &Generator{
		mode:  mode,
		newID: func() string { return "DATA-" + uuid.NewString() },
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Value draws from b, rounded to 4 decimals and clamped at zero.
func (g *Generator) Value(b Baseline) float64 {
	g.mu.Lock()
	u := g.rng.Float64()
	g.mu.Unlock()

	v := b.Mean + (u-0.5)*b.Spread
	v = math.Round(v*1e4) / 1e4
	return math.Max(0, v)
}

// Measurements draws one value per substance.
func (g *Generator) Measurements() models.Measurements {
	var m models.Measurements
	for _, s := range drawOrder {
		m.Set(s, g.Value(Baselines[s]))
	}
	return m
}

// Reading synthesizes one reading for loc at ts.
func (g *Generator) Reading(loc models.Location, ts time.Time) models.Reading {
	m := g.Measurements()
	return models.Reading{
		ID:             g.newID(),
		Location:       loc.Name,
		LocationID:     loc.ID,
		Timestamp:      ts,
		Measurements:   m,
		Status:         g.status(m),
		SensorID:       loc.PrimarySensor(),
		GPSCoordinates: loc.Coordinates,
	}
}

// Seed builds points readings per location spaced by spacing, the last one at now.
func (g *Generator) Seed(locs []models.Location, now time.Time, points int, spacing time.Duration) []models.Reading {
	out := make([]models.Reading, 0, len(locs)*points)
	for _, loc := range locs {
		for i := 0; i < points; i++ {
			ts := now.Add(-time.Duration(points-1-i) * spacing)
			out = append(out, g.Reading(loc, ts))
		}
	}
	return out
}

func (g *Generator) status(m models.Measurements) models.ReadingStatus {
	if g.mode != StatusRandom {
		return alerts.Classify(m)
	}

	g.mu.Lock()
	u := g.rng.Float64()
	g.mu.Unlock()

	switch {
	case u < 0.80:
		return models.ReadingSafe
	case u < 0.95:
		return models.ReadingWarning
	default:
		return models.ReadingCritical
	}
}
