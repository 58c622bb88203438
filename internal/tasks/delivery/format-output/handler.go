// internal/tasks/delivery/format-output/handler.go
package formatoutput

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"weekend-planner/internal/common/logger"
)

const (
	TaskType = "format-output"
)

var (
	ErrEmptyRecommendation = errors.New("EMPTY_RECOMMENDATION")
)

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Helvetica, Arial, sans-serif; line-height: 1.5; color: #222;">
<h1 style="font-size: 20px;">{{.Subject}}</h1>
{{range .Blocks}}{{if eq .Kind "heading"}}<h2 style="font-size: 16px;">{{template "spans" .Spans}}</h2>
{{else if eq .Kind "list"}}<ul>
{{range .Items}}<li>{{template "spans" .}}</li>
{{end}}</ul>
{{else}}<p>{{template "spans" .Spans}}</p>
{{end}}{{end}}{{if .Footer}}<p style="color: #888; font-size: 12px;">{{.Footer}}</p>
{{end}}</body>
</html>
{{define "spans"}}{{range .}}{{if .Bold}}<strong>{{.Text}}</strong>{{else}}{{.Text}}{{end}}{{end}}{{end}}`))

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.RawText) == "" {
		return nil, ErrEmptyRecommendation
	}

	subject := h.subject(input.Date)
	text := strings.TrimSpace(input.RawText) + "\n"

	var footer string
	if h.config.AppName != "" {
		footer = "Sent by " + h.config.AppName
	}

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, map[string]interface{}{
		"Subject": subject,
		"Blocks":  parseBlocks(input.RawText),
		"Footer":  footer,
	})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	h.logger.Debug("output formatted", map[string]interface{}{
		"subject":   subject,
		"textChars": len(text),
		"htmlChars": buf.Len(),
	})

	return &Output{
		Subject: subject,
		Text:    text,
		HTML:    buf.String(),
	}, nil
}

func (h *Handler) subject(date string) string {
	prefix := h.config.SubjectPrefix
	if prefix == "" {
		prefix = "Weekend plans"
	}
	if date == "" {
		return prefix
	}
	return fmt.Sprintf("%s for %s", prefix, date)
}
