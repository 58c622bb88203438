// internal/tasks/planning/generate-recommendation/handler.go
package generaterecommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	commonerrors "weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/llm"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/metrics"
	"weekend-planner/internal/models"
	"weekend-planner/internal/tools"
)

const (
	TaskType = "generate-recommendation"
)

var (
	ErrGeneratorExhausted = errors.New("GENERATOR_EXHAUSTED")
	ErrMissingPrompt      = errors.New("MISSING_PROMPT")
)

type Handler struct {
	config *Config
	model  llm.ChatModel
	tools  *tools.Registry
	specs  []llm.ToolSpec
	logger logger.Logger
}

func NewHandler(config *Config, model llm.ChatModel, registry *tools.Registry, log logger.Logger) *Handler {
	if registry == nil {
		registry, _ = tools.NewRegistry()
	}
	specs := make([]llm.ToolSpec, 0, registry.Len())
	for _, t := range registry.List() {
		specs = append(specs, llm.ToolSpec{Name: t.Name(), Description: t.Description()})
	}
	return &Handler{
		config: config,
		model:  model,
		tools:  registry,
		specs:  specs,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute runs the tool loop until the model answers without tool calls.
//
// Every model call and every tool execution costs one step against
// RecursionLimit. Each batch of tool calls is one round against MaxIterations.
// A bound is checked before the work it would pay for, so neither is ever
// exceeded.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.SystemPrompt == "" {
		return nil, ErrMissingPrompt
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	messages := []llm.Message{{Role: llm.RoleUser, Content: input.UserMessage}}
	invocations := make([]models.ToolInvocation, 0)
	rounds, steps := 0, 0

	for {
		if steps >= h.config.RecursionLimit {
			return nil, h.exhausted("recursion limit reached before final answer", rounds, steps)
		}
		steps++

		resp, err := h.model.Chat(ctx, llm.ChatRequest{
			System:   input.SystemPrompt,
			Messages: messages,
			Tools:    h.specs,
		})
		if err != nil {
			return nil, commonerrors.NewLLMRequestFailedError("recommendation", err)
		}

		if len(resp.ToolCalls) == 0 {
			h.logger.Info("recommendation generated", map[string]interface{}{
				"rounds":      rounds,
				"steps":       steps,
				"invocations": len(invocations),
				"chars":       len(resp.Content),
			})
			if resp.Content == "" {
				h.logger.Warn("model returned an empty recommendation", nil)
			}
			return &Output{
				RawText:     resp.Content,
				Invocations: invocations,
				Rounds:      rounds,
				Steps:       steps,
			}, nil
		}

		if rounds >= h.config.MaxIterations {
			return nil, h.exhausted("max iterations reached with tool calls pending", rounds, steps)
		}
		if steps+len(resp.ToolCalls) > h.config.RecursionLimit {
			return nil, h.exhausted("recursion limit reached with tool calls pending", rounds, steps)
		}
		rounds++
		steps += len(resp.ToolCalls)

		results := h.runTools(ctx, resp.ToolCalls, rounds)

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for i, call := range resp.ToolCalls {
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    results[i].Output,
				ToolCallID: call.ID,
			})
		}
		invocations = append(invocations, results...)
	}
}

func (h *Handler) exhausted(reason string, rounds, steps int) error {
	err := commonerrors.NewGeneratorExhaustedError(fmt.Errorf("%w: %s", ErrGeneratorExhausted, reason), rounds, steps)
	h.logger.Error("recommendation generator exhausted", err.Fields())
	return err
}

// runTools executes one round of calls. Results are always in request order.
func (h *Handler) runTools(ctx context.Context, calls []llm.ToolCall, round int) []models.ToolInvocation {
	results := make([]models.ToolInvocation, len(calls))

	if !h.config.ParallelTools || len(calls) == 1 {
		for i, call := range calls {
			results[i] = h.invoke(ctx, call, round)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()
			results[i] = h.invoke(ctx, call, round)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (h *Handler) invoke(ctx context.Context, call llm.ToolCall, round int) models.ToolInvocation {
	var output string
	if tool, ok := h.tools.Get(call.Name); ok {
		output = tool.Invoke(ctx)
	} else {
		output = unknownToolOutput(call.Name)
		metrics.ToolInvocations.WithLabelValues(call.Name, "unknown").Inc()
		h.logger.Warn("model requested an unknown tool", map[string]interface{}{
			"tool":  call.Name,
			"round": round,
		})
	}

	events, hasData := tools.ParseEvents(output)
	h.logger.Debug("tool invoked", map[string]interface{}{
		"tool":    call.Name,
		"round":   round,
		"events":  len(events),
		"hasData": hasData,
	})

	return models.ToolInvocation{
		Name:       call.Name,
		Arguments:  call.Arguments,
		Output:     output,
		Events:     events,
		EventCount: len(events),
		HasData:    hasData,
		Round:      round,
	}
}

func unknownToolOutput(name string) string {
	data, _ := json.Marshal(map[string]string{"error": fmt.Sprintf("unknown tool %q", name)})
	return string(data)
}
