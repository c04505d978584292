package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Status assignment modes for generated readings.
const (
	StatusModeThreshold = "threshold"
	StatusModeRandom    = "random"
)

// Validation errors
var (
	ErrInvalidTickInterval = errors.New("tick interval must be positive")
	ErrInvalidSeedPoints   = errors.New("seed points must be positive")
	ErrInvalidStatusMode   = errors.New("status mode must be threshold or random")
	ErrInvalidRecentLimit  = errors.New("recent readings/alerts limits must be positive")
	ErrMissingTopic        = errors.New("kafka topic is required when brokers are set")
	ErrInvalidSuppression  = errors.New("alert suppress window cannot be negative")
	ErrInvalidQueueSize    = errors.New("event queue size cannot be negative")
)

// Config holds runtime configuration for the monitoring service.
type Config struct {
	// Log level (debug, info, warn, error)
	LogLevel string

	HTTP       HTTPConfig
	Simulation SimulationConfig
	Broadcast  BroadcastConfig
	Kafka      KafkaConfig
	Events     EventsConfig
}

// HTTPConfig configures the dashboard API server.
type HTTPConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// SimulationConfig configures the reading simulator.
type SimulationConfig struct {
	// Interval between simulator ticks
	TickInterval time.Duration
	// Number of historical readings seeded per location
	SeedPoints int
	// Spacing between seeded readings
	SeedSpacing time.Duration
	// threshold or random
	StatusMode string
	// Zero disables suppression
	AlertSuppressWindow time.Duration
	// Zero picks a time-based seed
	RandSeed uint64
}

// BroadcastConfig bounds the snapshot handed to subscribers.
type BroadcastConfig struct {
	RecentReadings int
	RecentAlerts   int
	// Listeners slower than this are logged
	SlowListener time.Duration
}

// KafkaConfig configures the outbound event feed. No brokers means log-only.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Producer ProducerConfig
}

// ProducerConfig tunes the Kafka writer pool.
type ProducerConfig struct {
	PoolSize     int
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequiredAcks int
	Compression  string
	MaxRetries   int
	RetryBackoff time.Duration
}

// EventsConfig sizes the internal event queue between the service and the worker pool.
type EventsConfig struct {
	QueueSize int
	Workers   int
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Simulation: SimulationConfig{
			TickInterval: 30 * time.Second,
			SeedPoints:   24,
			SeedSpacing:  time.Hour,
			StatusMode:   StatusModeThreshold,
		},
		Broadcast: BroadcastConfig{
			RecentReadings: 50,
			RecentAlerts:   10,
			SlowListener:   250 * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Topic: "jaldrishti.events",
			Producer: ProducerConfig{
				PoolSize:     2,
				BatchSize:    100,
				BatchTimeout: 100 * time.Millisecond,
				WriteTimeout: 10 * time.Second,
				RequiredAcks: 1,
				Compression:  "snappy",
				MaxRetries:   3,
				RetryBackoff: 100 * time.Millisecond,
			},
		},
		Events: EventsConfig{
			QueueSize: 1000,
			Workers:   1,
		},
	}
}

// Load builds a config from defaults, an optional .env file and the environment.
func Load(envFiles ...string) (*Config, error) {
	// .env is optional; fall back to the process environment
	_ = godotenv.Load(envFiles...)

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("JD_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("JD_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("JD_STATUS_MODE"); v != "" {
		c.Simulation.StatusMode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("JD_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitCSV(v)
	}
	if v := os.Getenv("JD_KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JD_TICK_INTERVAL", &c.Simulation.TickInterval},
		{"JD_SEED_SPACING", &c.Simulation.SeedSpacing},
		{"JD_ALERT_SUPPRESS_WINDOW", &c.Simulation.AlertSuppressWindow},
		{"JD_SLOW_LISTENER", &c.Broadcast.SlowListener},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"JD_SEED_POINTS", &c.Simulation.SeedPoints},
		{"JD_RECENT_READINGS", &c.Broadcast.RecentReadings},
		{"JD_RECENT_ALERTS", &c.Broadcast.RecentAlerts},
		{"JD_EVENT_QUEUE_SIZE", &c.Events.QueueSize},
		{"JD_EVENT_WORKERS", &c.Events.Workers},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = parsed
	}

	if v := os.Getenv("JD_RAND_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("JD_RAND_SEED: %w", err)
		}
		c.Simulation.RandSeed = seed
	}

	return nil
}

// Validate checks the config for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Simulation.TickInterval <= 0 {
		return ErrInvalidTickInterval
	}
	if c.Simulation.SeedPoints <= 0 {
		return ErrInvalidSeedPoints
	}
	switch c.Simulation.StatusMode {
	case StatusModeThreshold, StatusModeRandom:
	default:
		return ErrInvalidStatusMode
	}
	if c.Simulation.AlertSuppressWindow < 0 {
		return ErrInvalidSuppression
	}
	if c.Broadcast.RecentReadings <= 0 || c.Broadcast.RecentAlerts <= 0 {
		return ErrInvalidRecentLimit
	}
	if c.Events.QueueSize < 0 {
		return ErrInvalidQueueSize
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return ErrMissingTopic
	}
	return nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
