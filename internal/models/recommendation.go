// internal/models/recommendation.go
package models

import (
	"sort"
	"strings"
	"time"
)

const (
	RecommendationSchemaVersion = "2"
	RecommendationCreatedBy     = "weekend-planner"
	RecommendationDateLayout    = "2006-01-02"
)

// RecommendationRecord is what one pipeline run suggested. It is written once
// and never updated.
type RecommendationRecord struct {
	ID                string    `json:"id" firestore:"-"`
	Timestamp         time.Time `json:"timestamp" firestore:"timestamp"`
	Date              string    `json:"date" firestore:"date"`
	VenuesMentioned   []string  `json:"venues_mentioned" firestore:"venues_mentioned"`
	EventsMentioned   []string  `json:"events_mentioned" firestore:"events_mentioned"`
	WeatherConditions string    `json:"weather_conditions" firestore:"weather_conditions"`
	RawText           string    `json:"raw_text" firestore:"raw_suggestions"`
	SchemaVersion     string    `json:"schema_version" firestore:"schema_version"`
	CreatedBy         string    `json:"created_by" firestore:"created_by"`
}

// NewRecommendationRecord stamps a record at now. Venue and event lists are
// normalized to sorted sets.
func NewRecommendationRecord(now time.Time, rawText, weather string, venues, events []string) *RecommendationRecord {
	return &RecommendationRecord{
		Timestamp:         now,
		Date:              now.Format(RecommendationDateLayout),
		VenuesMentioned:   NormalizeSet(venues),
		EventsMentioned:   NormalizeSet(events),
		WeatherConditions: weather,
		RawText:           rawText,
		SchemaVersion:     RecommendationSchemaVersion,
		CreatedBy:         RecommendationCreatedBy,
	}
}

// NormalizeSet trims, drops blanks, de-duplicates and sorts. It never returns nil.
func NormalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
