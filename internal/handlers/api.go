// Package handlers exposes the monitoring service as a JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"jaldrishti/internal/broadcast"
	"jaldrishti/internal/logger"
	"jaldrishti/internal/models"
	"jaldrishti/internal/monitor"
)

// DefaultHours is the readings window when the request does not give one.
const DefaultHours = 24

// Monitor is the slice of the monitoring service the API serves.
type Monitor interface {
	WaterQualityData(locationID string, hours float64) ([]models.Reading, error)
	LatestReadings() []models.Reading
	Alerts(status models.AlertStatus) ([]models.Alert, error)
	UpdateAlertStatus(id string, status models.AlertStatus) error
	Locations() []models.Location
	Teams() []models.Team
	Samples(locationID string) []models.Sample
	AddSample(in models.SampleInput) (models.Sample, error)
	SystemStatus() models.SystemStatus
	Overview() models.Overview
	Snapshot() models.Snapshot
	Subscribe(l broadcast.Listener) (unsubscribe func())
}

// API serves the dashboard endpoints.
type API struct {
	svc         Monitor
	maxBodySize int64
	shutdown    <-chan struct{}
}

// APIConfig holds configuration for the API handlers
type APIConfig struct {
	Monitor     Monitor
	MaxBodySize int64
	// Closed when the server shuts down; open streams end when it closes
	Shutdown <-chan struct{}
}

// NewAPI creates the dashboard API.
func NewAPI(cfg APIConfig) *API {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 1 << 20
	}
	return &API{svc: cfg.Monitor, maxBodySize: cfg.MaxBodySize, shutdown: cfg.Shutdown}
}

// Register mounts every endpoint under /api/v1 on r.
func (a *API) Register(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/readings", a.readings).Methods(http.MethodGet)
	v1.HandleFunc("/readings/latest", a.latestReadings).Methods(http.MethodGet)
	v1.HandleFunc("/alerts", a.alerts).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/{id}/status", a.updateAlertStatus).Methods(http.MethodPut, http.MethodPatch)
	v1.HandleFunc("/locations", a.locations).Methods(http.MethodGet)
	v1.HandleFunc("/teams", a.teams).Methods(http.MethodGet)
	v1.HandleFunc("/samples", a.samples).Methods(http.MethodGet)
	v1.HandleFunc("/samples", a.addSample).Methods(http.MethodPost)
	v1.HandleFunc("/status", a.status).Methods(http.MethodGet)
	v1.HandleFunc("/overview", a.overview).Methods(http.MethodGet)
	v1.HandleFunc("/snapshot", a.snapshot).Methods(http.MethodGet)
	v1.HandleFunc("/stream", a.stream).Methods(http.MethodGet)
}

// Response is the body of every successful API call.
type Response struct {
	Success bool `json:"success"`
	Count   *int `json:"count,omitempty"`
	Data    any  `json:"data"`
}

func (a *API) readings(w http.ResponseWriter, r *http.Request) {
	hours := float64(DefaultHours)
	if v := r.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "hours must be a number")
			return
		}
		hours = parsed
	}

	location := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("location")))
	readings, err := a.svc.WaterQualityData(location, hours)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, readings, len(readings))
}

func (a *API) latestReadings(w http.ResponseWriter, r *http.Request) {
	latest := a.svc.LatestReadings()
	writeList(w, latest, len(latest))
}

func (a *API) alerts(w http.ResponseWriter, r *http.Request) {
	status := models.AlertStatus(strings.ToLower(r.URL.Query().Get("status")))
	alerts, err := a.svc.Alerts(status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, alerts, len(alerts))
}

// StatusUpdateRequest is the body of an alert status change.
type StatusUpdateRequest struct {
	Status models.AlertStatus `json:"status"`
}

func (a *API) updateAlertStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req StatusUpdateRequest
	if err := a.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Status = models.AlertStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))

	if err := a.svc.UpdateAlertStatus(id, req.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	log := logger.WithAlert("api", id)
	log.Debug().Str("status", string(req.Status)).Msg("alert status changed via api")
	writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]string{
		"id":     id,
		"status": string(req.Status),
	}})
}

func (a *API) locations(w http.ResponseWriter, r *http.Request) {
	locs := a.svc.Locations()
	writeList(w, locs, len(locs))
}

func (a *API) teams(w http.ResponseWriter, r *http.Request) {
	teams := a.svc.Teams()
	writeList(w, teams, len(teams))
}

func (a *API) samples(w http.ResponseWriter, r *http.Request) {
	location := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("location")))
	samples := a.svc.Samples(location)
	writeList(w, samples, len(samples))
}

// SampleRequest is a sample as posted by a field collector. CollectionDate accepts any
// of models.SupportedTimestampFormats.
type SampleRequest struct {
	LocationID     string               `json:"location_id"`
	CollectedBy    string               `json:"collected_by"`
	CollectionDate string               `json:"collection_date"`
	SampleType     models.SampleType    `json:"sample_type"`
	Status         models.SampleStatus  `json:"status,omitempty"`
	Results        *models.Measurements `json:"results,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Photos         []string             `json:"photos,omitempty"`
}

func (a *API) addSample(w http.ResponseWriter, r *http.Request) {
	var req SampleRequest
	if err := a.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	collected, err := models.ParseTimestamp(req.CollectionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "collection_date: "+err.Error())
		return
	}

	sample, err := a.svc.AddSample(models.SampleInput{
		LocationID:     req.LocationID,
		CollectedBy:    req.CollectedBy,
		CollectionDate: collected,
		SampleType:     req.SampleType,
		Status:         req.Status,
		Results:        req.Results,
		Notes:          req.Notes,
		Photos:         req.Photos,
	})
	if err != nil {
		// a sample naming an unknown location is a bad request, not a missing resource
		if errors.Is(err, monitor.ErrUnknownLocation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: sample})
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: a.svc.SystemStatus()})
}

func (a *API) overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: a.svc.Overview()})
}

func (a *API) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: a.svc.Snapshot()})
}

var errEmptyBody = errors.New("request body is empty")

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New("content-type must be application/json")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// writeServiceError maps service and validation errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, monitor.ErrAlertNotFound), errors.Is(err, monitor.ErrUnknownLocation):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, monitor.ErrInvalidStatus),
		errors.Is(err, monitor.ErrInvalidWindow),
		isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log := logger.WithComponent("api")
		log.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		models.ErrEmptyLocationID,
		models.ErrEmptyCollector,
		models.ErrZeroCollectionDate,
		models.ErrFutureCollectionDate,
		models.ErrInvalidSampleType,
		models.ErrInvalidSampleStatus,
		models.ErrNegativeResult,
		models.ErrNotesTooLong,
		models.ErrTooManyPhotos,
		models.ErrInvalidTimestamp,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeList(w http.ResponseWriter, data any, n int) {
	writeJSON(w, http.StatusOK, Response{Success: true, Count: &n, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.WithComponent("api")
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
