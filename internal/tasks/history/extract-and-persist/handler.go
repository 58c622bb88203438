// internal/tasks/history/extract-and-persist/handler.go
package extractandpersist

import (
	"context"
	"errors"
	"time"

	"weekend-planner/internal/common/llm"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/history"
	"weekend-planner/internal/models"
)

const (
	TaskType = "extract-and-persist"
)

var (
	ErrMissingInput = errors.New("MISSING_INPUT")
)

type Handler struct {
	config    *Config
	extractor *Extractor
	history   history.Store
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, model llm.TextModel, store history.Store, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:    config,
		extractor: NewExtractor(model, log),
		history:   store,
		logger:    log,
		now:       time.Now,
	}
}

func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Execute records what was recommended. Only a missing input is an error;
// extraction and persistence problems are logged and the text passes through.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrMissingInput
	}

	extractCtx := ctx
	if h.config.ExtractionTimeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, h.config.ExtractionTimeout)
		defer cancel()
	}
	venues := h.extractor.Extract(extractCtx, input.RawText)
	events := MentionedEvents(input.RawText, input.Invocations)

	record := models.NewRecommendationRecord(h.now(), input.RawText, input.Weather, venues, events)
	id := h.history.Save(ctx, record)

	h.logger.Info("recommendation recorded", map[string]interface{}{
		"recordId": id,
		"venues":   record.VenuesMentioned,
		"events":   len(record.EventsMentioned),
		"saved":    id != "",
	})

	return &Output{
		RawText:  input.RawText,
		Record:   record,
		RecordID: id,
	}, nil
}
