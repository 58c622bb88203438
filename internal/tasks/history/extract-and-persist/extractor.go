// internal/tasks/history/extract-and-persist/extractor.go
package extractandpersist

import (
	"context"
	"strings"

	commonerrors "weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/llm"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/metrics"
	"weekend-planner/internal/common/validation"
	"weekend-planner/internal/models"
)

const extractionSystemPrompt = `You extract venue names from family activity recommendations.
Return ONLY a JSON array of strings, one per distinct venue or place the text recommends visiting.
Use the venue's proper name as written in the text. Do not include event names, cities or generic places like "home".
If no venues are mentioned, return [].`

var venueArraySchema = validation.MustCompile("venues", `{
  "type": "array",
  "items": {"type": "string", "minLength": 1, "pattern": "\\S"}
}`)

// Extractor turns recommendation text into a venue set with one model call.
type Extractor struct {
	model  llm.TextModel
	logger logger.Logger
}

func NewExtractor(model llm.TextModel, log logger.Logger) *Extractor {
	return &Extractor{model: model, logger: log}
}

// Extract never fails. Any model, parse or schema problem yields an empty list.
func (e *Extractor) Extract(ctx context.Context, rawText string) []string {
	if strings.TrimSpace(rawText) == "" {
		return []string{}
	}

	reply, err := e.model.Complete(ctx, extractionSystemPrompt, rawText)
	if err != nil {
		return e.fail(err)
	}

	var venues []string
	if err := venueArraySchema.Decode([]byte(llm.CleanJSONResponse(reply)), &venues); err != nil {
		return e.fail(err)
	}

	venues = models.NormalizeSet(venues)
	metrics.VenuesExtracted.Set(float64(len(venues)))
	return venues
}

func (e *Extractor) fail(err error) []string {
	metrics.ExtractionFailures.Inc()
	metrics.VenuesExtracted.Set(0)
	e.logger.Warn("venue extraction failed, continuing with no venues", commonerrors.NewExtractionFailedError(err).Fields())
	return []string{}
}

// MentionedEvents returns titles of events the tools returned that appear in
// the text, compared case-insensitively.
func MentionedEvents(rawText string, invocations []models.ToolInvocation) []string {
	haystack := strings.ToLower(rawText)
	var titles []string
	for _, inv := range invocations {
		for _, ev := range inv.Events {
			title := strings.TrimSpace(ev.Title)
			if title != "" && strings.Contains(haystack, strings.ToLower(title)) {
				titles = append(titles, title)
			}
		}
	}
	return models.NormalizeSet(titles)
}
