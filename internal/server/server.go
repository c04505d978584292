// Package server wires the monitoring service, its event feed and the dashboard API
// into one runnable process.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"jaldrishti/internal/config"
	"jaldrishti/internal/handlers"
	"jaldrishti/internal/kafka"
	"jaldrishti/internal/logger"
	"jaldrishti/internal/metrics"
	"jaldrishti/internal/middleware"
	"jaldrishti/internal/models"
	"jaldrishti/internal/monitor"
	"jaldrishti/internal/worker"
)

const (
	statsInterval   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 15 * time.Second
)

// Server owns the process lifecycle.
type Server struct {
	cfg      *config.Config
	svc      *monitor.Service
	events   chan *models.Envelope
	producer *kafka.Producer
	pool     *worker.Pool
	http     *http.Server

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}

	// closed by http.Server.Shutdown so open streams let go
	streamsDone chan struct{}

	wg sync.WaitGroup
}

// New constructs a Server. opts are passed through to the monitoring service.
func New(cfg *config.Config, opts ...monitor.Option) (*Server, error) {
	log := logger.WithComponent("server")

	s := &Server{
		cfg:    cfg,
		events:      make(chan *models.Envelope, cfg.Events.QueueSize),
		ready:       make(chan struct{}),
		streamsDone: make(chan struct{}),
	}
	metrics.EventQueueCapacity.Set(float64(cfg.Events.QueueSize))

	var publisher worker.Publisher = worker.LogPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Producer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize producer: %w", err)
		}
		s.producer = producer
		publisher = producer
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("kafka producer initialized")
	} else {
		log.Info().Msg("no kafka brokers configured, events go to the log")
	}

	s.pool = worker.NewPool(worker.Config{
		Publisher:    publisher,
		Events:       s.events,
		Workers:      cfg.Events.Workers,
		BatchSize:    cfg.Kafka.Producer.BatchSize,
		BatchTimeout: cfg.Kafka.Producer.BatchTimeout,
	})

	s.svc = monitor.New(cfg, append([]monitor.Option{monitor.WithEvents(s.events)}, opts...)...)

	s.http = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	s.http.RegisterOnShutdown(func() { close(s.streamsDone) })
	return s, nil
}

// Monitor returns the underlying monitoring service.
func (s *Server) Monitor() *monitor.Service {
	return s.svc
}

// Handler builds the full HTTP handler: API routes, health, stats and metrics behind
// logging and CORS, with panic recovery outermost.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	// inside the router so the matched route template is available
	r.Use(middleware.Logging)

	handlers.NewAPI(handlers.APIConfig{Monitor: s.svc, Shutdown: s.streamsDone}).Register(r)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.statsHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return middleware.Chain(c.Handler(r), middleware.Recovery)
}

// Addr returns the bound listen address once Run has started listening.
func (s *Server) Addr() string {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the simulator, event feed and HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")
	log.Info().Msg("server starting")

	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.HTTP.Addr, err)
	}

	s.pool.Start()

	if err := s.svc.Start(ctx); err != nil {
		ln.Close()
		s.drain()
		return fmt.Errorf("failed to start simulator: %w", err)
	}

	serveErr := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info().Str("addr", ln.Addr().String()).Msg("starting HTTP server")
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			serveErr <- err
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reportStats(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		err = nil
	case err = <-serveErr:
	}

	s.shutdown()
	return err
}

// shutdown stops intake first, then drains the event feed.
func (s *Server) shutdown() {
	log := logger.WithComponent("server")
	log.Info().Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	s.svc.Stop()
	s.drain()
	s.wg.Wait()

	log.Info().Msg("server stopped gracefully")
}

// drain closes the event queue once nothing can emit, waits for the workers to
// flush and closes the producer.
func (s *Server) drain() {
	log := logger.WithComponent("server")

	close(s.events)

	done := make(chan struct{})
	go func() {
		s.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("event feed drained")
	case <-time.After(drainTimeout):
		log.Warn().Msg("event feed drain timeout, stopping workers")
		s.pool.Stop()
	}

	if s.producer != nil {
		log.Info().Msg("closing kafka producer")
		if err := s.producer.Close(); err != nil {
			log.Error().Err(err).Msg("producer close error")
		}
	}
}

// reportStats periodically logs statistics
func (s *Server) reportStats(ctx context.Context) {
	log := logger.WithComponent("server")
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.stats()
			metrics.EventQueueSize.Set(float64(st.Queue.Buffered))

			log.Info().
				Uint64("worker_processed", st.Worker.Processed).
				Uint64("worker_failed", st.Worker.Failed).
				Uint64("producer_sent", st.Producer.MessagesSent).
				Uint64("producer_write_errors", st.Producer.WriteErrors).
				Int("queue_size", st.Queue.Buffered).
				Int("active_alerts", st.System.ActiveAlerts).
				Int("data_points_today", st.System.DataPointsToday).
				Msg("stats")
		}
	}
}

// Stats is the body of /stats.
type Stats struct {
	Worker   worker.Stats        `json:"worker"`
	Producer kafka.ProducerStats `json:"producer"`
	Queue    QueueStats          `json:"queue"`
	System   models.SystemStatus `json:"system"`
}

// QueueStats describes the event queue.
type QueueStats struct {
	Buffered int `json:"buffered"`
	Capacity int `json:"capacity"`
}

func (s *Server) stats() Stats {
	st := Stats{
		Worker: s.pool.Stats(),
		Queue:  QueueStats{Buffered: len(s.events), Capacity: cap(s.events)},
		System: s.svc.SystemStatus(),
	}
	if s.producer != nil {
		st.Producer = s.producer.Stats()
	}
	return st
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status           string    `json:"status"`
	SimulatorRunning bool      `json:"simulator_running"`
	EventFeed        string    `json:"event_feed"`
	Timestamp        time.Time `json:"timestamp"`
	Error            string    `json:"error,omitempty"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:           "healthy",
		SimulatorRunning: s.svc.Running(),
		EventFeed:        "log",
		Timestamp:        time.Now().UTC(),
	}
	status := http.StatusOK

	if s.producer != nil {
		resp.EventFeed = "kafka"
		if err := s.producer.HealthCheck(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
