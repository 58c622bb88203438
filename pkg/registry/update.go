// pkg/registry/update.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// NewVenueRegistry returns an empty registry stamped now.
func NewVenueRegistry(now time.Time) *VenueRegistry {
	return &VenueRegistry{
		Version:     "1.0.0",
		LastUpdated: now.Format(time.RFC3339),
		Venues:      []Venue{},
	}
}

// AddVenue appends venue and re-validates the registry.
func (r *VenueRegistry) AddVenue(venue Venue, now time.Time) error {
	for _, existing := range r.Venues {
		if existing.ID == venue.ID {
			return fmt.Errorf("venue with ID %s already exists", venue.ID)
		}
	}
	r.Venues = append(r.Venues, venue)
	if err := r.Validate(); err != nil {
		r.Venues = r.Venues[:len(r.Venues)-1]
		return err
	}
	r.LastUpdated = now.Format(time.RFC3339)
	return nil
}

// UpdateVenue sets one field of venue id. List fields take comma-separated values.
func (r *VenueRegistry) UpdateVenue(id, field, value string, now time.Time) error {
	idx := -1
	for i := range r.Venues {
		if r.Venues[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("venue with ID %s not found", id)
	}

	updated := r.Venues[idx]
	switch field {
	case "toolName":
		updated.ToolName = value
	case "displayName":
		updated.DisplayName = value
	case "description":
		updated.Description = value
	case "url":
		updated.URL = value
	case "venue":
		updated.Venue = value
	case "address":
		updated.Address = value
	case "focus":
		updated.Focus = splitList(value)
	case "eventTypes":
		updated.EventTypes = splitList(value)
	case "tags":
		updated.Tags = splitList(value)
	case "enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid enabled value: %w", err)
		}
		updated.Enabled = enabled
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	previous := r.Venues[idx]
	r.Venues[idx] = updated
	if err := r.Validate(); err != nil {
		r.Venues[idx] = previous
		return err
	}
	r.LastUpdated = now.Format(time.RFC3339)
	return nil
}

// SaveRegistry writes reg as indented JSON, creating the directory if needed.
func SaveRegistry(reg *VenueRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
