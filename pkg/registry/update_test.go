package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2025, 12, 21, 8, 0, 0, 0, time.UTC)

func cosi() Venue {
	return Venue{
		ID:       "cosi",
		ToolName: "get_cosi_events",
		URL:      "https://cosi.org/events",
		Venue:    "COSI",
		Enabled:  true,
	}
}

func TestVenueRegistry_AddVenue(t *testing.T) {
	reg := NewVenueRegistry(stamp.Add(-time.Hour))
	require.NoError(t, reg.AddVenue(cosi(), stamp))
	assert.Len(t, reg.Venues, 1)
	assert.Equal(t, "2025-12-21T08:00:00Z", reg.LastUpdated)

	err := reg.AddVenue(cosi(), stamp)
	assert.ErrorContains(t, err, "already exists")

	bad := cosi()
	bad.ID = "cosi-2"
	bad.URL = "ftp://cosi.org"
	assert.Error(t, reg.AddVenue(bad, stamp))
	assert.Len(t, reg.Venues, 1)
}

func TestVenueRegistry_UpdateVenue(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr string
		check   func(t *testing.T, v Venue)
	}{
		{"disable", "enabled", "false", "", func(t *testing.T, v Venue) { assert.False(t, v.Enabled) }},
		{"tags", "tags", "indoor, science ,", "", func(t *testing.T, v Venue) {
			assert.Equal(t, []string{"indoor", "science"}, v.Tags)
		}},
		{"address", "address", "333 W Broad St", "", func(t *testing.T, v Venue) { assert.Equal(t, "333 W Broad St", v.Address) }},
		{"bad bool", "enabled", "nope", "invalid enabled value", nil},
		{"unknown field", "color", "blue", "unknown field", nil},
		{"invalid value rolls back", "toolName", "has spaces", "invalid toolName", func(t *testing.T, v Venue) {
			assert.Equal(t, "get_cosi_events", v.ToolName)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewVenueRegistry(stamp)
			require.NoError(t, reg.AddVenue(cosi(), stamp))

			err := reg.UpdateVenue("cosi", tt.field, tt.value, stamp)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.check != nil {
				tt.check(t, reg.Venues[0])
			}
		})
	}

	reg := NewVenueRegistry(stamp)
	assert.ErrorContains(t, reg.UpdateVenue("missing", "enabled", "true", stamp), "not found")
}

func TestSaveRegistry_RoundTrip(t *testing.T) {
	reg := NewVenueRegistry(stamp)
	require.NoError(t, reg.AddVenue(cosi(), stamp))

	path := filepath.Join(t.TempDir(), "nested", "venues.json")
	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Venues, loaded.Venues)
	assert.Equal(t, reg.LastUpdated, loaded.LastUpdated)
}
