// Package pipeline runs one planning pass through five linear states:
// BuildPrompt, GenerateRecommendation, ExtractAndPersist, FormatOutput and
// DeliverOutput. A stage error ends the run in that state; nothing is retried
// or rolled back.
package pipeline

import (
	"context"
	"time"

	commonerrors "weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/metrics"
	"weekend-planner/internal/models"
	extractandpersist "weekend-planner/internal/tasks/history/extract-and-persist"
	deliveroutput "weekend-planner/internal/tasks/delivery/deliver-output"
	formatoutput "weekend-planner/internal/tasks/delivery/format-output"
	buildprompt "weekend-planner/internal/tasks/planning/build-prompt"
	generaterecommendation "weekend-planner/internal/tasks/planning/generate-recommendation"
)

type State string

const (
	StateBuildPrompt            State = "BuildPrompt"
	StateGenerateRecommendation State = "GenerateRecommendation"
	StateExtractAndPersist      State = "ExtractAndPersist"
	StateFormatOutput           State = "FormatOutput"
	StateDeliverOutput          State = "DeliverOutput"
	StateDone                   State = "Done"
)

// Stages are the state handlers. The pipeline owns none of their connections.
type Stages struct {
	BuildPrompt *buildprompt.Handler
	Generate    *generaterecommendation.Handler
	Persist     *extractandpersist.Handler
	Format      *formatoutput.Handler
	Deliver     *deliveroutput.Handler
}

// RunResult is what a run produced. State is Done on success, otherwise the
// state that failed; fields of later states stay empty.
type RunResult struct {
	State        State
	SystemPrompt string
	Weather      string
	RawText      string
	Record       *models.RecommendationRecord
	Invocations  []models.ToolInvocation
	Formatted    *formatoutput.Output
	Delivery     *deliveroutput.Output
}

type Pipeline struct {
	stages Stages
	logger logger.Logger
}

func New(stages Stages, log logger.Logger) *Pipeline {
	return &Pipeline{
		stages: stages,
		logger: log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	started := time.Now()

	var prompt *buildprompt.Output
	err := p.stage(ctx, result, StateBuildPrompt, func() (err error) {
		prompt, err = p.stages.BuildPrompt.Execute(ctx, &buildprompt.Input{})
		return err
	})
	if err != nil {
		return result, err
	}
	result.SystemPrompt = prompt.SystemPrompt
	result.Weather = prompt.Weather

	var generated *generaterecommendation.Output
	err = p.stage(ctx, result, StateGenerateRecommendation, func() (err error) {
		generated, err = p.stages.Generate.Execute(ctx, &generaterecommendation.Input{
			SystemPrompt: prompt.SystemPrompt,
			UserMessage:  prompt.UserMessage,
		})
		return err
	})
	if err != nil {
		return result, err
	}
	result.Invocations = generated.Invocations

	var persisted *extractandpersist.Output
	err = p.stage(ctx, result, StateExtractAndPersist, func() (err error) {
		persisted, err = p.stages.Persist.Execute(ctx, &extractandpersist.Input{
			RawText:     generated.RawText,
			Weather:     prompt.Weather,
			Invocations: generated.Invocations,
		})
		return err
	})
	if err != nil {
		return result, err
	}
	result.RawText = persisted.RawText
	result.Record = persisted.Record

	err = p.stage(ctx, result, StateFormatOutput, func() (err error) {
		result.Formatted, err = p.stages.Format.Execute(ctx, &formatoutput.Input{
			RawText: persisted.RawText,
			Date:    prompt.Date,
		})
		return err
	})
	if err != nil {
		return result, err
	}

	err = p.stage(ctx, result, StateDeliverOutput, func() (err error) {
		result.Delivery, err = p.stages.Deliver.Execute(ctx, &deliveroutput.Input{
			Subject: result.Formatted.Subject,
			Text:    result.Formatted.Text,
			HTML:    result.Formatted.HTML,
		})
		return err
	})
	if err != nil {
		return result, err
	}

	result.State = StateDone
	metrics.PipelineRuns.WithLabelValues(string(StateDone), "").Inc()
	p.logger.Info("pipeline completed", map[string]interface{}{
		"duration":    time.Since(started).String(),
		"recordId":    result.Record.ID,
		"venues":      result.Record.VenuesMentioned,
		"invocations": len(result.Invocations),
		"channel":     result.Delivery.Channel,
	})
	return result, nil
}

func (p *Pipeline) stage(ctx context.Context, result *RunResult, state State, fn func() error) error {
	result.State = state
	if err := ctx.Err(); err != nil {
		return p.fail(state, err)
	}

	start := time.Now()
	err := fn()
	metrics.StageDuration.WithLabelValues(string(state)).Observe(time.Since(start).Seconds())
	if err != nil {
		return p.fail(state, err)
	}

	p.logger.Debug("stage completed", map[string]interface{}{
		"state":    string(state),
		"duration": time.Since(start).String(),
	})
	return nil
}

func (p *Pipeline) fail(state State, err error) error {
	stdErr := commonerrors.Normalize(err)
	metrics.PipelineRuns.WithLabelValues(string(state), string(stdErr.Code)).Inc()

	fields := stdErr.Fields()
	fields["state"] = string(state)
	p.logger.Error("pipeline stage failed", fields)
	return err
}
