package tools

import (
	"encoding/json"
	"strings"

	"weekend-planner/internal/common/validation"
	"weekend-planner/internal/models"
)

const eventFieldSchema = `{"type": ["string", "null"]}`

var eventArraySchema = validation.MustCompile("events", `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "title": `+eventFieldSchema+`,
      "date": `+eventFieldSchema+`,
      "time": `+eventFieldSchema+`,
      "description": `+eventFieldSchema+`,
      "type": `+eventFieldSchema+`,
      "age_requirements": `+eventFieldSchema+`,
      "cost": `+eventFieldSchema+`,
      "venue": `+eventFieldSchema+`,
      "address": `+eventFieldSchema+`,
      "notes": `+eventFieldSchema+`
    }
  }
}`)

// ParseEvents decodes tool output. Error objects, non-JSON and empty lists
// report no data.
func ParseEvents(output string) ([]models.Event, bool) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var events []models.Event
	if err := json.Unmarshal([]byte(trimmed), &events); err != nil {
		return nil, false
	}
	return events, len(events) > 0
}

// errorOutput is the string a tool returns instead of failing.
func errorOutput(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error": "unknown error"}`
	}
	return string(data)
}
