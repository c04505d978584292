package models

import (
	"strings"
	"time"
)

// SupportedTimestampFormats lists formats we attempt to parse
var SupportedTimestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
}

// Normalize applies field normalization to a SampleInput
// - upper-cases LocationID
// - lower-cases SampleType and Status
// - defaults Status to collected
// - drops blank photo references
func (in *SampleInput) Normalize() {
	in.LocationID = strings.ToUpper(strings.TrimSpace(in.LocationID))
	in.CollectedBy = strings.TrimSpace(in.CollectedBy)
	in.Notes = strings.TrimSpace(in.Notes)

	in.SampleType = SampleType(strings.ToLower(strings.TrimSpace(string(in.SampleType))))
	in.Status = SampleStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if in.Status == "" {
		in.Status = SampleCollected
	}

	if in.Photos != nil {
		photos := make([]string, 0, len(in.Photos))
		for _, p := range in.Photos {
			if p = strings.TrimSpace(p); p != "" {
				photos = append(photos, p)
			}
		}
		in.Photos = photos
	}
}

// ParseTimestamp attempts to parse a timestamp string into time.Time
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)

	for _, format := range SupportedTimestampFormats {
		if t, err := time.Parse(format, ts); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidTimestamp
}
