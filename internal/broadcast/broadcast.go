// Package broadcast fans service snapshots out to registered listeners.
package broadcast

import (
	"runtime/debug"
	"sync"
	"time"

	"jaldrishti/internal/logger"
	"jaldrishti/internal/metrics"
	"jaldrishti/internal/models"
)

// Listener receives a snapshot. Snapshots are shared between listeners and must be
// treated as read-only.
type Listener func(models.Snapshot)

// Broadcaster keeps a set of listeners and invokes them synchronously on Publish.
type Broadcaster struct {
	slow time.Duration

	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
}

// Config holds broadcaster configuration
type Config struct {
	// Listeners running longer than this are logged. Zero disables the check.
	SlowListener time.Duration
}

// New creates an empty broadcaster
func New(cfg Config) *Broadcaster {
	return &Broadcaster{
		slow:      cfg.SlowListener,
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers l and returns a handle removing exactly that registration.
// The handle is safe to call more than once.
func (b *Broadcaster) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	metrics.Subscribers.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			_, ok := b.listeners[id]
			delete(b.listeners, id)
			b.mu.Unlock()
			if ok {
				metrics.Subscribers.Dec()
			}
		})
	}
}

// Len returns the number of registered listeners
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish invokes every listener with s. A panicking listener is logged and skipped;
// the remaining listeners still run. Returns the number of listeners that failed.
func (b *Broadcaster) Publish(s models.Snapshot) int {
	b.mu.RLock()
	targets := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		targets = append(targets, l)
	}
	b.mu.RUnlock()

	metrics.BroadcastsTotal.Inc()

	failed := 0
	for _, l := range targets {
		if !b.invoke(l, s) {
			failed++
		}
	}
	return failed
}

func (b *Broadcaster) invoke(l Listener, s models.Snapshot) (ok bool) {
	log := logger.WithComponent("broadcast")
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("listener panic recovered")
			metrics.PanicsRecovered.WithLabelValues("listener").Inc()
			metrics.ListenerFailuresTotal.WithLabelValues("panic").Inc()
			ok = false
		}
	}()

	l(s)

	if elapsed := time.Since(start); b.slow > 0 && elapsed > b.slow {
		log.Warn().
			Dur("duration", elapsed).
			Dur("threshold", b.slow).
			Msg("slow listener")
		metrics.ListenerFailuresTotal.WithLabelValues("slow").Inc()
	}
	return true
}

// Channel returns a listener that forwards snapshots to a buffered channel.
// When the buffer is full the snapshot is dropped rather than blocking the publisher.
func Channel(buffer int) (Listener, <-chan models.Snapshot) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan models.Snapshot, buffer)
	listener := func(s models.Snapshot) {
		select {
		case ch <- s:
		default:
			metrics.ListenerFailuresTotal.WithLabelValues("dropped").Inc()
		}
	}
	return listener, ch
}
