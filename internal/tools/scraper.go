package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "weekend-planner/internal/common/errors"
	commonhttp "weekend-planner/internal/common/http"
	"weekend-planner/internal/common/llm"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/metrics"
	"weekend-planner/internal/models"
	"weekend-planner/pkg/registry"

	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	ErrEmptyPage      = errors.New("EMPTY_PAGE")
	ErrInvalidEvents  = errors.New("INVALID_EVENTS")
	ErrScraperRequest = errors.New("SCRAPER_REQUEST_FAILED")
)

const scraperSystemPrompt = "You extract structured event listings from venue web pages. " +
	"Return ONLY a valid JSON array. Only include events that are clearly listed on the page. Do not make up events."

type ScraperConfig struct {
	MaxPageChars int
	MaxFailures  int
	OpenTimeout  time.Duration
}

// ScraperTool fetches a venue page, reduces it to text and asks a small
// model to list the events on it.
type ScraperTool struct {
	venue   registry.Venue
	config  ScraperConfig
	http    *commonhttp.Client
	model   llm.TextModel
	breaker *gobreaker.CircuitBreaker[[]models.Event]
	logger  logger.Logger
}

func NewScraperTool(venue registry.Venue, cfg ScraperConfig, httpClient *commonhttp.Client, model llm.TextModel, log logger.Logger) *ScraperTool {
	t := &ScraperTool{
		venue:  venue,
		config: cfg,
		http:   httpClient,
		model:  model,
		logger: log.With(map[string]interface{}{"tool": venue.ToolName}),
	}

	maxFailures := uint32(cfg.MaxFailures)
	if maxFailures == 0 {
		maxFailures = 1
	}
	t.breaker = gobreaker.NewCircuitBreaker[[]models.Event](gobreaker.Settings{
		Name:        venue.ToolName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			t.logger.Warn("circuit breaker state changed", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})
	return t
}

// NewScraperRegistry builds one scraper per enabled venue, in registry order.
func NewScraperRegistry(reg *registry.VenueRegistry, cfg ScraperConfig, httpClient *commonhttp.Client, model llm.TextModel, log logger.Logger) (*Registry, error) {
	r := &Registry{index: map[string]Tool{}}
	for _, venue := range reg.Enabled() {
		if err := r.Register(NewScraperTool(venue, cfg, httpClient, model, log)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (t *ScraperTool) Name() string { return t.venue.ToolName }

func (t *ScraperTool) Description() string {
	if t.venue.Description != "" {
		return t.venue.Description
	}
	return fmt.Sprintf("Get upcoming events from %s.", t.venue.Venue)
}

// Invoke returns indented JSON events or an {"error": ...} object.
func (t *ScraperTool) Invoke(ctx context.Context) string {
	start := time.Now()
	events, err := t.breaker.Execute(func() ([]models.Event, error) {
		return t.scrape(ctx)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
		}
		metrics.ToolInvocations.WithLabelValues(t.Name(), outcome).Inc()
		fields := commonerrors.NewToolFetchFailedError(t.Name(), err).Fields()
		fields["durationMs"] = time.Since(start).Milliseconds()
		t.logger.Warn("venue fetch failed", fields)
		return errorOutput(fmt.Sprintf("Failed to fetch or process events: %v", err))
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return errorOutput(fmt.Sprintf("Failed to encode events: %v", err))
	}

	metrics.ToolInvocations.WithLabelValues(t.Name(), "ok").Inc()
	t.logger.Info("venue events fetched", map[string]interface{}{
		"events":     len(events),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return string(data)
}

func (t *ScraperTool) scrape(ctx context.Context) ([]models.Event, error) {
	page, err := t.http.Get(ctx, t.venue.URL)
	if err != nil {
		return nil, err
	}

	text, err := ExtractText(page, t.config.MaxPageChars)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPage
	}

	reply, err := t.model.Complete(ctx, scraperSystemPrompt, t.extractionPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScraperRequest, err)
	}

	var events []models.Event
	if err := eventArraySchema.Decode([]byte(llm.CleanJSONResponse(reply)), &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvents, err)
	}

	for i := range events {
		if events[i].Venue == "" {
			events[i].Venue = t.venue.Venue
		}
		if events[i].Address == "" {
			events[i].Address = t.venue.Address
		}
	}
	return events, nil
}

func (t *ScraperTool) extractionPrompt(pageText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract all upcoming events from this %s events webpage.\n\n", t.venue.Venue)
	sb.WriteString("For each event, extract:\n")
	sb.WriteString("- title: Event name\n")
	sb.WriteString("- date: Event date or date range\n")
	sb.WriteString("- time: Event time if available\n")
	sb.WriteString("- description: Brief description of the event\n")
	if len(t.venue.EventTypes) > 0 {
		fmt.Fprintf(&sb, "- type: Type of event (e.g., %s)\n", quoteJoin(t.venue.EventTypes))
	} else {
		sb.WriteString("- type: Type of event\n")
	}
	sb.WriteString("- age_requirements: Any age restrictions mentioned\n")
	sb.WriteString("- cost: Pricing information (note if included with admission or additional fee)\n")
	fmt.Fprintf(&sb, "- venue: Always %q\n", t.venue.Venue)
	if t.venue.Address != "" {
		fmt.Fprintf(&sb, "- address: Always %q\n", t.venue.Address)
	} else {
		sb.WriteString("- address: Event address if available\n")
	}
	sb.WriteString("- notes: Important details (weather-dependent, member benefits, etc.)\n\n")
	sb.WriteString("Return ONLY a valid JSON array of events. Each event should be a JSON object with the fields above.\n")
	sb.WriteString("If a field is not available, use an empty string.\n")

	if len(t.venue.Focus) > 0 {
		sb.WriteString("\nFocus on:\n")
		for i, f := range t.venue.Focus {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, f)
		}
	}

	sb.WriteString("\nWebpage content:\n")
	sb.WriteString(pageText)
	return sb.String()
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
