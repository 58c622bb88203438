// internal/tasks/planning/build-prompt/models.go
package buildprompt

type Input struct {
	// Today overrides the handler clock when set.
	Today string `json:"today,omitempty"` // YYYY-MM-DD
}

type Output struct {
	SystemPrompt    string   `json:"systemPrompt"`
	UserMessage     string   `json:"userMessage"`
	Weather         string   `json:"weather"`
	WeatherDegraded bool     `json:"weatherDegraded"`
	RecentVenues    []string `json:"recentVenues"`
	Date            string   `json:"date"`
}
