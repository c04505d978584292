package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jaldrishti/internal/broadcast"
	"jaldrishti/internal/logger"
)

const (
	streamBuffer    = 8
	streamKeepAlive = 15 * time.Second
)

// stream pushes every broadcast snapshot as a server-sent event until the client
// leaves or the server shuts down.
func (a *API) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	listener, snapshots := broadcast.Channel(streamBuffer)
	unsubscribe := a.svc.Subscribe(listener)
	defer unsubscribe()

	log := logger.WithComponent("stream").With().Str("remote_addr", r.RemoteAddr).Logger()
	log.Info().Msg("stream client connected")
	defer log.Info().Msg("stream client disconnected")

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// the current state goes out first so clients don't wait a full tick
	if err := writeEvent(w, a.svc.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-a.shutdown:
			log.Debug().Msg("server shutting down, closing stream")
			return
		case s := <-snapshots:
			if err := writeEvent(w, s); err != nil {
				log.Debug().Err(err).Msg("stream write failed")
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
	return err
}
