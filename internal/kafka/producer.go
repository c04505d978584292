// Package kafka publishes monitoring events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"jaldrishti/internal/config"
	"jaldrishti/internal/logger"
	"jaldrishti/internal/metrics"
	"jaldrishti/internal/models"
)

// Producer errors
var (
	ErrProducerClosed  = errors.New("producer is closed")
	ErrNoBrokers       = errors.New("at least one broker is required")
	ErrNoTopic         = errors.New("topic is required")
	ErrSerializeFailed = errors.New("failed to serialize event")
)

// Message headers
const (
	HeaderKind    = "kind"
	HeaderEventID = "event_id"
	HeaderNode    = "node"
)

// Producer writes events through a small pool of kafka writers, keyed by location so
// one location's events stay ordered on one partition.
type Producer struct {
	cfg     config.ProducerConfig
	topic   string
	writers []*kafka.Writer
	pool    chan *kafka.Writer
	closed  atomic.Bool

	messagesSent    atomic.Uint64
	messagesDropped atomic.Uint64
	writeErrors     atomic.Uint64
	bytesWritten    atomic.Uint64
}

// NewProducer creates a producer for topic on brokers.
func NewProducer(brokers []string, topic string, cfg config.ProducerConfig) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 2
	}

	p := &Producer{
		cfg:     cfg,
		topic:   topic,
		writers: make([]*kafka.Writer, cfg.PoolSize),
		pool:    make(chan *kafka.Writer, cfg.PoolSize),
	}

	codec := compression(cfg.Compression)
	for i := 0; i < cfg.PoolSize; i++ {
		w := &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    cfg.BatchSize,
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
			Compression:  codec,
			// retries are ours, see writeWithRetry
			MaxAttempts: 1,
		}
		p.writers[i] = w
		p.pool <- w
	}

	return p, nil
}

func compression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "snappy":
		return compress.Snappy
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.None
	}
}

// Message converts an event to a kafka message.
func Message(e *models.Envelope) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}
	return kafka.Message{
		Key:   []byte(e.PartitionKey),
		Value: data,
		Headers: []kafka.Header{
			{Key: HeaderKind, Value: []byte(e.Kind)},
			{Key: HeaderEventID, Value: []byte(e.EventID())},
			{Key: HeaderNode, Value: []byte(e.Node)},
		},
		Time: e.EmittedAt,
	}, nil
}

// Publish sends one event.
func (p *Producer) Publish(ctx context.Context, e *models.Envelope) error {
	return p.PublishBatch(ctx, []*models.Envelope{e})
}

// PublishBatch sends events in one write. Events that fail to serialize are dropped
// and counted; the rest are still sent. A failed write counts once in WriteErrors and
// is left to the caller to retry, so no per-message failure is recorded here.
func (p *Producer) PublishBatch(ctx context.Context, events []*models.Envelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(events) == 0 {
		return nil
	}

	log := logger.WithComponent("kafka_producer")
	start := time.Now()

	messages := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := Message(e)
		if err != nil {
			log.Error().
				Err(err).
				Str("kind", string(e.Kind)).
				Str("event_id", e.EventID()).
				Msg("dropping unserializable event")
			p.messagesDropped.Add(1)
			metrics.KafkaPublishTotal.WithLabelValues("dropped").Inc()
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil
	}

	var w *kafka.Writer
	select {
	case w = <-p.pool:
		defer func() { p.pool <- w }()
	case <-ctx.Done():
		return ctx.Err()
	}

	err := p.writeWithRetry(ctx, w, messages)
	duration := time.Since(start)
	metrics.KafkaPublishDuration.Observe(duration.Seconds())

	if err != nil {
		p.writeErrors.Add(1)
		metrics.KafkaWriteErrors.Inc()
		return err
	}

	var bytes uint64
	for _, m := range messages {
		bytes += uint64(len(m.Value))
	}
	p.messagesSent.Add(uint64(len(messages)))
	p.bytesWritten.Add(bytes)
	metrics.KafkaPublishTotal.WithLabelValues("success").Add(float64(len(messages)))
	metrics.KafkaBytesWritten.Add(float64(bytes))

	log.Debug().
		Int("batch_size", len(messages)).
		Dur("duration", duration).
		Msg("events published")
	return nil
}

// writeWithRetry retries with exponential backoff. Context errors are not retried.
func (p *Producer) writeWithRetry(ctx context.Context, w *kafka.Writer, messages []kafka.Message) error {
	log := logger.WithComponent("kafka_producer")
	backoff := p.cfg.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.KafkaPublishRetries.Inc()
			log.Warn().
				Int("attempt", attempt).
				Int("batch_size", len(messages)).
				Dur("backoff", backoff).
				Msg("retrying kafka publish")

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := w.WriteMessages(ctx, messages...)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	log.Error().
		Err(lastErr).
		Int("attempts", p.cfg.MaxRetries+1).
		Int("batch_size", len(messages)).
		Msg("kafka publish failed after all retries")
	return fmt.Errorf("failed after %d attempts: %w", p.cfg.MaxRetries+1, lastErr)
}

// Close closes every writer. Safe to call more than once.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	var errs []error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats returns producer counters
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesSent:    p.messagesSent.Load(),
		MessagesDropped: p.messagesDropped.Load(),
		WriteErrors:     p.writeErrors.Load(),
		BytesWritten:    p.bytesWritten.Load(),
	}
}

// ProducerStats holds producer counters. Per-event delivery failures are counted by
// the worker pool, which owns the retry.
type ProducerStats struct {
	MessagesSent uint64
	// Events that could not be serialized
	MessagesDropped uint64
	// Writes that failed after all retries
	WriteErrors  uint64
	BytesWritten uint64
}

// HealthCheck reports whether the producer can still accept events.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	select {
	case w := <-p.pool:
		p.pool <- w
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
