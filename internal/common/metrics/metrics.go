// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every planner metric. It is pushed once at the end of a run.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	PipelineRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weekend_planner_runs_total",
			Help: "Total number of pipeline runs by terminal state",
		},
		[]string{"state", "error_code"},
	)

	StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weekend_planner_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	ToolInvocations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weekend_planner_tool_invocations_total",
			Help: "Total number of fetch tool invocations by outcome",
		},
		[]string{"tool", "outcome"},
	)

	HistoryFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weekend_planner_history_failures_total",
			Help: "History store operations that failed and were degraded",
		},
		[]string{"operation", "backend"},
	)

	ExtractionFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "weekend_planner_extraction_failures_total",
			Help: "Venue extractions that fell back to an empty list",
		},
	)

	VenuesExtracted = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "weekend_planner_venues_extracted",
			Help: "Number of venues extracted in the most recent run",
		},
	)
)

// Push sends the registry to a Pushgateway. An empty url is a no-op.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
