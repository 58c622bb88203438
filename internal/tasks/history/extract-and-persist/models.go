package extractandpersist

import "weekend-planner/internal/models"

type Input struct {
	RawText     string                  `json:"rawText"`
	Weather     string                  `json:"weather"`
	Invocations []models.ToolInvocation `json:"invocations"`
}

type Output struct {
	// RawText is the recommendation exactly as generated.
	RawText  string                       `json:"rawText"`
	Record   *models.RecommendationRecord `json:"record"`
	RecordID string                       `json:"recordId,omitempty"`
}
