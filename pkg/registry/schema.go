// pkg/registry/schema.go
package registry

type VenueRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Venues      []Venue `json:"venues"`
}

// Venue configures one fetch tool.
type Venue struct {
	ID          string   `json:"id"`
	ToolName    string   `json:"toolName"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Venue       string   `json:"venue"`
	Address     string   `json:"address"`
	Focus       []string `json:"focus"`
	EventTypes  []string `json:"eventTypes"`
	Tags        []string `json:"tags"`
	Enabled     bool     `json:"enabled"`
}
