// internal/models/event.go
package models

// Event is one record returned by a venue fetch tool. Every field is optional.
type Event struct {
	Title           string `json:"title"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	Description     string `json:"description,omitempty"`
	Type            string `json:"type,omitempty"`
	AgeRequirements string `json:"age_requirements,omitempty"`
	Cost            string `json:"cost,omitempty"`
	Venue           string `json:"venue,omitempty"`
	Address         string `json:"address,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// ToolInvocation is one tool call made by the recommendation generator, in call order.
type ToolInvocation struct {
	Name       string  `json:"name"`
	Arguments  string  `json:"arguments,omitempty"`
	Output     string  `json:"output"`
	Events     []Event `json:"events,omitempty"`
	EventCount int     `json:"eventCount"`
	HasData    bool    `json:"hasData"`
	Round      int     `json:"round"`
}
