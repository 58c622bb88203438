// Package history persists what each run recommended and answers "which
// venues were suggested recently". Every storage failure is degraded to a log
// line so a flaky store never stops a run.
package history

import (
	"context"
	"sort"
	"time"

	"weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/metrics"
	"weekend-planner/internal/models"

	"github.com/google/uuid"
)

// Backend stores records and serves time-window queries on the timestamp index.
type Backend interface {
	Name() string
	Add(ctx context.Context, record *models.RecommendationRecord) (string, error)
	// Since returns records with timestamp >= cutoff, newest first.
	Since(ctx context.Context, cutoff time.Time) ([]*models.RecommendationRecord, error)
}

// Store is what the pipeline stages depend on.
type Store interface {
	Save(ctx context.Context, record *models.RecommendationRecord) string
	QueryRecent(ctx context.Context, days int) []*models.RecommendationRecord
	RecentVenues(ctx context.Context, days int) []string
}

type Client struct {
	backend Backend
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

func NewClient(backend Backend, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		backend: backend,
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"component": "history", "backend": backend.Name()}),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for window cutoffs.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Save writes record and returns its id, or "" when the write failed.
// A missing id is assigned before the write.
func (c *Client) Save(ctx context.Context, record *models.RecommendationRecord) string {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	id, err := c.backend.Add(ctx, record)
	if err != nil {
		metrics.HistoryFailures.WithLabelValues("save", c.backend.Name()).Inc()
		c.logger.Warn("failed to save recommendation", errors.NewHistorySaveFailedError(c.backend.Name(), err).Fields())
		return ""
	}

	c.logger.Info("saved recommendation", map[string]interface{}{
		"id":     id,
		"venues": len(record.VenuesMentioned),
	})
	return id
}

// QueryRecent returns records from the last days days, newest first. Failures
// yield an empty slice.
func (c *Client) QueryRecent(ctx context.Context, days int) []*models.RecommendationRecord {
	cutoff := c.now().Add(-time.Duration(days) * 24 * time.Hour)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	records, err := c.backend.Since(ctx, cutoff)
	if err != nil {
		metrics.HistoryFailures.WithLabelValues("query", c.backend.Name()).Inc()
		c.logger.Warn("failed to query recent recommendations", errors.NewHistoryQueryFailedError(c.backend.Name(), days, err).Fields())
		return []*models.RecommendationRecord{}
	}

	out := make([]*models.RecommendationRecord, 0, len(records))
	for _, r := range records {
		if r != nil && !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// RecentVenues is the sorted, de-duplicated union of venues_mentioned over QueryRecent(days).
func (c *Client) RecentVenues(ctx context.Context, days int) []string {
	var all []string
	for _, r := range c.QueryRecent(ctx, days) {
		all = append(all, r.VenuesMentioned...)
	}
	venues := models.NormalizeSet(all)

	c.logger.Debug("recent venues", map[string]interface{}{
		"days":   days,
		"venues": len(venues),
	})
	return venues
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
