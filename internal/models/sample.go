package models

import (
	"errors"
	"time"
)

// SampleType is where a field sample was taken
type SampleType string

const (
	SampleSurface     SampleType = "surface"
	SampleDepth       SampleType = "depth"
	SampleGroundwater SampleType = "groundwater"
)

// IsValid checks if the sample type is known
func (t SampleType) IsValid() bool {
	switch t {
	case SampleSurface, SampleDepth, SampleGroundwater:
		return true
	default:
		return false
	}
}

// SampleStatus follows collected -> in-lab -> analyzed -> reported
type SampleStatus string

const (
	SampleCollected SampleStatus = "collected"
	SampleInLab     SampleStatus = "in-lab"
	SampleAnalyzed  SampleStatus = "analyzed"
	SampleReported  SampleStatus = "reported"
)

// IsValid checks if the sample status is known
func (s SampleStatus) IsValid() bool {
	switch s {
	case SampleCollected, SampleInLab, SampleAnalyzed, SampleReported:
		return true
	default:
		return false
	}
}

// IsPending reports whether lab results are still outstanding
func (s SampleStatus) IsPending() bool {
	return s == SampleCollected || s == SampleInLab
}

// Sample is a manually logged field collection
type Sample struct {
	ID             string        `json:"id"`
	LocationID     string        `json:"location_id"`
	CollectedBy    string        `json:"collected_by"`
	CollectionDate time.Time     `json:"collection_date"`
	SampleType     SampleType    `json:"sample_type"`
	Status         SampleStatus  `json:"status"`
	Results        *Measurements `json:"results,omitempty"`
	Notes          string        `json:"notes"`
	Photos         []string      `json:"photos"`
}

// Clone returns a copy that shares no pointers with s
func (s Sample) Clone() Sample {
	if s.Results != nil {
		r := *s.Results
		s.Results = &r
	}
	s.Photos = append([]string(nil), s.Photos...)
	return s
}

// SampleInput is a sample as submitted by a collector, before an id is assigned
type SampleInput struct {
	LocationID     string        `json:"location_id"`
	CollectedBy    string        `json:"collected_by"`
	CollectionDate time.Time     `json:"collection_date"`
	SampleType     SampleType    `json:"sample_type"`
	Status         SampleStatus  `json:"status"`
	Results        *Measurements `json:"results,omitempty"`
	Notes          string        `json:"notes"`
	Photos         []string      `json:"photos"`
}

// Validation errors
var (
	ErrEmptyLocationID      = errors.New("location ID cannot be empty")
	ErrEmptyCollector       = errors.New("collector cannot be empty")
	ErrZeroCollectionDate   = errors.New("collection date cannot be zero")
	ErrFutureCollectionDate = errors.New("collection date cannot be in the future")
	ErrInvalidSampleType    = errors.New("invalid sample type")
	ErrInvalidSampleStatus  = errors.New("invalid sample status")
	ErrNegativeResult       = errors.New("sample results cannot be negative")
	ErrNotesTooLong         = errors.New("notes exceed maximum length")
	ErrTooManyPhotos        = errors.New("too many photos")
	ErrInvalidTimestamp     = errors.New("invalid timestamp format")
)

const (
	MaxNotesLength = 4096
	MaxPhotos      = 20
)

// Validate checks if the SampleInput has all required fields and valid values.
// now is the caller's clock; collection dates more than a minute past it are rejected.
func (in *SampleInput) Validate(now time.Time) error {
	if in.LocationID == "" {
		return ErrEmptyLocationID
	}

	if in.CollectedBy == "" {
		return ErrEmptyCollector
	}

	if in.CollectionDate.IsZero() {
		return ErrZeroCollectionDate
	}

	if in.CollectionDate.After(now.Add(time.Minute)) {
		return ErrFutureCollectionDate
	}

	if !in.SampleType.IsValid() {
		return ErrInvalidSampleType
	}

	if !in.Status.IsValid() {
		return ErrInvalidSampleStatus
	}

	if in.Results != nil && in.Results.HasNegative() {
		return ErrNegativeResult
	}

	if len(in.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}

	if len(in.Photos) > MaxPhotos {
		return ErrTooManyPhotos
	}

	return nil
}

// HasNegative reports whether any measurement is below zero
func (m Measurements) HasNegative() bool {
	return m.Lead < 0 || m.Mercury < 0 || m.Arsenic < 0 || m.Cadmium < 0 ||
		m.Chromium < 0 || m.Nickel < 0 || m.PH < 0 || m.Temperature < 0 ||
		m.DissolvedOxygen < 0
}
