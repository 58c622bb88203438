package generaterecommendation

import "weekend-planner/internal/models"

type Input struct {
	SystemPrompt string `json:"systemPrompt"`
	UserMessage  string `json:"userMessage"`
}

type Output struct {
	RawText     string                  `json:"rawText"`
	Invocations []models.ToolInvocation `json:"invocations"`
	Rounds      int                     `json:"rounds"`
	Steps       int                     `json:"steps"`
}
