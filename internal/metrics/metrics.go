package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jaldrishti_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jaldrishti_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		},
		[]string{"method", "route"},
	)

	// Simulator metrics
	ReadingsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_readings_generated_total",
			Help: "Total number of synthetic readings generated",
		},
		[]string{"location_id", "source"}, // source: seed, tick
	)

	SimulatorTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jaldrishti_simulator_tick_duration_seconds",
			Help:    "Time taken by one simulator tick",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	SimulatorTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_simulator_ticks_total",
			Help: "Total number of simulator ticks",
		},
		[]string{"result"}, // result: generated, idle
	)

	// Alert metrics
	AlertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_alerts_raised_total",
			Help: "Total number of threshold alerts raised",
		},
		[]string{"substance", "severity"},
	)

	AlertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_alerts_suppressed_total",
			Help: "Total number of alerts suppressed inside the suppression window",
		},
		[]string{"substance"},
	)

	AlertStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_alert_status_updates_total",
			Help: "Total number of alert status updates",
		},
		[]string{"status", "result"}, // result: updated, not_found, invalid
	)

	// Sample metrics
	SamplesAddedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_samples_added_total",
			Help: "Total number of field samples logged",
		},
		[]string{"sample_type"},
	)

	// Broadcast metrics
	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jaldrishti_subscribers",
			Help: "Current number of registered snapshot listeners",
		},
	)

	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jaldrishti_broadcasts_total",
			Help: "Total number of snapshot broadcasts",
		},
	)

	ListenerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_listener_failures_total",
			Help: "Total number of listener invocations that failed",
		},
		[]string{"reason"}, // reason: panic, slow, dropped
	)

	// Event feed metrics
	EventsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_events_enqueued_total",
			Help: "Total number of events handed to the event feed",
		},
		[]string{"kind", "status"}, // status: queued, dropped
	)

	EventQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jaldrishti_event_queue_size",
			Help: "Current size of the event queue",
		},
	)

	EventQueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jaldrishti_event_queue_capacity",
			Help: "Capacity of the event queue",
		},
	)

	// Worker metrics
	WorkerProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jaldrishti_worker_processed_total",
			Help: "Total number of events published by workers",
		},
	)

	WorkerFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jaldrishti_worker_failed_total",
			Help: "Total number of events workers failed to publish",
		},
	)

	WorkerBatchPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jaldrishti_worker_batch_publish_duration_seconds",
			Help:    "Time taken to publish a batch of events",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Kafka producer metrics
	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_kafka_publish_total",
			Help: "Total number of messages published to Kafka",
		},
		[]string{"status"}, // status: success, dropped
	)

	KafkaWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jaldrishti_kafka_write_errors_total",
			Help: "Total number of Kafka writes that failed after all retries",
		},
	)

	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jaldrishti_kafka_publish_duration_seconds",
			Help:    "Time taken to publish to Kafka",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	KafkaPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jaldrishti_kafka_publish_retries_total",
			Help: "Total number of Kafka publish retries",
		},
	)

	KafkaBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jaldrishti_kafka_bytes_written_total",
			Help: "Total bytes written to Kafka",
		},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jaldrishti_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
