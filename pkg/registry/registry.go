// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"weekend-planner/internal/common/validation"
)

// Tool names must be acceptable as model function names.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func LoadRegistry(path string) (*VenueRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg VenueRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks ids and tool names are unique and every entry is usable.
func (r *VenueRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Venues))
	tools := make(map[string]bool, len(r.Venues))
	for i, v := range r.Venues {
		switch {
		case v.ID == "":
			return fmt.Errorf("venues[%d]: id is required", i)
		case ids[v.ID]:
			return fmt.Errorf("venues[%d]: duplicate id %q", i, v.ID)
		case !toolNamePattern.MatchString(v.ToolName):
			return fmt.Errorf("venues[%d] %s: invalid toolName %q", i, v.ID, v.ToolName)
		case tools[v.ToolName]:
			return fmt.Errorf("venues[%d] %s: duplicate toolName %q", i, v.ID, v.ToolName)
		case !validation.ValidateURL(v.URL):
			return fmt.Errorf("venues[%d] %s: invalid url %q", i, v.ID, v.URL)
		case v.Venue == "":
			return fmt.Errorf("venues[%d] %s: venue is required", i, v.ID)
		}
		ids[v.ID] = true
		tools[v.ToolName] = true
	}
	return nil
}

// Enabled returns enabled venues in file order.
func (r *VenueRegistry) Enabled() []Venue {
	out := make([]Venue, 0, len(r.Venues))
	for _, v := range r.Venues {
		if v.Enabled {
			out = append(out, v)
		}
	}
	return out
}
