// internal/tasks/planning/build-prompt/handler.go
package buildprompt

import (
	"context"
	"errors"
	"fmt"
	"time"

	commonerrors "weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/weather"
	"weekend-planner/internal/history"
)

const (
	TaskType = "build-prompt"
)

var (
	ErrInvalidDate = errors.New("INVALID_DATE")
)

type Handler struct {
	config  *Config
	history history.Store
	weather weather.Forecaster
	logger  logger.Logger
	now     func() time.Time
}

func NewHandler(config *Config, store history.Store, forecaster weather.Forecaster, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		history: store,
		weather: forecaster,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now: time.Now,
	}
}

// WithClock replaces the clock that decides "today".
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Execute gathers recent venues and the forecast, then renders the prompt.
// Neither a history nor a weather failure stops the run.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	today := h.now()
	if input != nil && input.Today != "" {
		parsed, err := time.ParseInLocation(promptDateLayout, input.Today, today.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		today = parsed
	}

	recent := h.history.RecentVenues(ctx, h.config.LookbackDays)

	forecast, degraded := h.forecast(ctx)

	household := Household{HomeLocation: h.config.HomeLocation, Bedtime: h.config.Bedtime}
	prompt := household.Build(h.config.Children, forecast, recent, today)

	h.logger.Info("system prompt built", map[string]interface{}{
		"children":        len(h.config.Children),
		"recentVenues":    len(recent),
		"weatherDegraded": degraded,
		"promptChars":     len(prompt),
	})

	return &Output{
		SystemPrompt:    prompt,
		UserMessage:     h.config.UserMessage,
		Weather:         forecast,
		WeatherDegraded: degraded,
		RecentVenues:    recent,
		Date:            today.Format(promptDateLayout),
	}, nil
}

func (h *Handler) forecast(ctx context.Context) (string, bool) {
	if h.weather == nil {
		return WeatherUnavailable, true
	}
	text, err := h.weather.Forecast(ctx)
	if err != nil {
		h.logger.Warn("weather forecast unavailable", commonerrors.NewWeatherFetchFailedError(h.config.WeatherLocation, err).Fields())
		return WeatherUnavailable, true
	}
	return text, false
}
