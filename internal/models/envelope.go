package models

import (
	"time"
)

// EventKind tells consumers which payload an envelope carries
type EventKind string

const (
	EventReading     EventKind = "reading"
	EventAlert       EventKind = "alert"
	EventAlertStatus EventKind = "alert_status"
	EventSample      EventKind = "sample"
)

// Envelope wraps a domain event with metadata for the outbound feed
type Envelope struct {
	Kind    EventKind `json:"kind"`
	Reading *Reading  `json:"reading,omitempty"`
	Alert   *Alert    `json:"alert,omitempty"`
	Sample  *Sample   `json:"sample,omitempty"`

	EmittedAt    time.Time `json:"emitted_at"`
	Node         string    `json:"node"`
	PartitionKey string    `json:"partition_key"`
}

// EventID returns the id of the wrapped payload
func (e *Envelope) EventID() string {
	switch {
	case e.Reading != nil:
		return e.Reading.ID
	case e.Alert != nil:
		return e.Alert.ID
	case e.Sample != nil:
		return e.Sample.ID
	default:
		return ""
	}
}

// NewReadingEnvelope wraps a reading, partitioned by location
func NewReadingEnvelope(r Reading, node string) *Envelope {
	return &Envelope{
		Kind:         EventReading,
		Reading:      &r,
		EmittedAt:    time.Now().UTC(),
		Node:         node,
		PartitionKey: r.LocationID,
	}
}

// NewAlertEnvelope wraps a new or updated alert, partitioned by location name
func NewAlertEnvelope(kind EventKind, a Alert, node string) *Envelope {
	return &Envelope{
		Kind:         kind,
		Alert:        &a,
		EmittedAt:    time.Now().UTC(),
		Node:         node,
		PartitionKey: a.Location,
	}
}

// NewSampleEnvelope wraps a logged sample, partitioned by location
func NewSampleEnvelope(s Sample, node string) *Envelope {
	s = s.Clone()
	return &Envelope{
		Kind:         EventSample,
		Sample:       &s,
		EmittedAt:    time.Now().UTC(),
		Node:         node,
		PartitionKey: s.LocationID,
	}
}
