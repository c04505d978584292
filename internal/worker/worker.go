// Package worker drains the service's event queue in batches and hands them to a
// Publisher.
package worker

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"jaldrishti/internal/logger"
	"jaldrishti/internal/metrics"
	"jaldrishti/internal/models"
)

// Publisher delivers events to the outbound feed.
type Publisher interface {
	Publish(ctx context.Context, e *models.Envelope) error
	PublishBatch(ctx context.Context, events []*models.Envelope) error
}

// Pool runs workers that batch events from the queue and publish them.
type Pool struct {
	publisher      Publisher
	events         <-chan *models.Envelope
	workers        int
	batchSize      int
	batchTimeout   time.Duration
	publishTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	processed atomic.Uint64
	failed    atomic.Uint64
}

// Config holds worker pool configuration
type Config struct {
	Publisher Publisher
	Events    <-chan *models.Envelope
	Workers   int
	BatchSize int
	// Flush a partial batch after this long
	BatchTimeout time.Duration
	// Upper bound on one PublishBatch call
	PublishTimeout time.Duration
}

// NewPool creates a new worker pool
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		publisher:      cfg.Publisher,
		events:         cfg.Events,
		workers:        cfg.Workers,
		batchSize:      cfg.BatchSize,
		batchTimeout:   cfg.BatchTimeout,
		publishTimeout: cfg.PublishTimeout,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	log := logger.WithComponent("worker_pool")
	log.Info().
		Int("workers", p.workers).
		Int("batch_size", p.batchSize).
		Dur("batch_timeout", p.batchTimeout).
		Msg("starting worker pool")

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels the workers and waits for them to flush what they hold.
func (p *Pool) Stop() {
	log := logger.WithComponent("worker_pool")
	log.Info().Msg("stopping worker pool")
	p.cancel()
	p.wg.Wait()
	log.Info().Msg("worker pool stopped")
}

// Wait blocks until every worker has exited, which happens once the queue is closed
// and drained.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := logger.WithComponent("worker").With().Int("worker_id", id).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("worker panic recovered")
			metrics.PanicsRecovered.WithLabelValues("worker").Inc()
		}
	}()

	log.Debug().Msg("worker started")
	defer log.Debug().Msg("worker stopped")

	batch := make([]*models.Envelope, 0, p.batchSize)
	timer := time.NewTimer(p.batchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) > 0 {
			p.publishBatch(batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case <-p.ctx.Done():
			p.drain(&batch)
			flush()
			return

		case e, ok := <-p.events:
			if !ok {
				flush()
				return
			}
			metrics.EventQueueSize.Set(float64(len(p.events)))

			batch = append(batch, e)
			if len(batch) >= p.batchSize {
				flush()
				timer.Reset(p.batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(p.batchTimeout)
		}
	}
}

// drain pulls whatever is already queued without waiting for more.
func (p *Pool) drain(batch *[]*models.Envelope) {
	for {
		select {
		case e, ok := <-p.events:
			if !ok {
				return
			}
			*batch = append(*batch, e)
		default:
			return
		}
	}
}

func (p *Pool) publishBatch(batch []*models.Envelope) {
	log := logger.WithComponent("worker")
	start := time.Now()

	ctx, cancel := p.publishContext()
	err := p.publisher.PublishBatch(ctx, batch)
	cancel()
	duration := time.Since(start)
	metrics.WorkerBatchPublishDuration.Observe(duration.Seconds())

	if err == nil {
		log.Debug().
			Int("batch_size", len(batch)).
			Dur("duration", duration).
			Msg("batch published")
		p.processed.Add(uint64(len(batch)))
		metrics.WorkerProcessedTotal.Add(float64(len(batch)))
		return
	}

	log.Error().
		Err(err).
		Int("batch_size", len(batch)).
		Dur("duration", duration).
		Msg("failed to publish batch")

	p.publishIndividually(batch)
}

// publishContext bounds one publish call. p.ctx may already be cancelled during
// shutdown; the flush still gets its window.
func (p *Pool) publishContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(p.ctx), p.publishTimeout)
}

// publishIndividually retries a failed batch one event at a time, each with its own
// timeout. This is the only place an event is counted as failed.
func (p *Pool) publishIndividually(batch []*models.Envelope) {
	log := logger.WithComponent("worker")
	log.Warn().Int("count", len(batch)).Msg("attempting individual publish for failed batch")

	for _, e := range batch {
		ctx, cancel := p.publishContext()
		err := p.publisher.Publish(ctx, e)
		cancel()
		if err != nil {
			log.Error().
				Err(err).
				Str("kind", string(e.Kind)).
				Str("event_id", e.EventID()).
				Str("partition_key", e.PartitionKey).
				Msg("failed to publish event")
			p.failed.Add(1)
			metrics.WorkerFailedTotal.Inc()
			continue
		}
		p.processed.Add(1)
		metrics.WorkerProcessedTotal.Inc()
	}
}

// Stats returns worker pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Stats holds worker pool counters
type Stats struct {
	Processed uint64
	Failed    uint64
}
