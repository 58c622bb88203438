// internal/tasks/delivery/deliver-output/handler.go
package deliveroutput

import (
	"context"
	"errors"
	"time"

	commonerrors "weekend-planner/internal/common/errors"
	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/common/validation"
)

const (
	TaskType = "deliver-output"
)

var (
	ErrInvalidAddress = errors.New("INVALID_ADDRESS")
	ErrEmptyMessage   = errors.New("EMPTY_MESSAGE")
)

type Handler struct {
	config *Config
	sender Sender
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, sender Sender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		sender: sender,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"channel":  sender.Channel(),
		}),
		now: time.Now,
	}
}

// Execute sends the message once. Every failure is fatal for the run.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	channel := h.sender.Channel()

	if input == nil || input.Text == "" {
		return nil, commonerrors.NewDeliveryFailedError(channel, ErrEmptyMessage)
	}
	if channel == ChannelSES || channel == ChannelSMTP {
		if !validation.ValidateEmail(h.config.To) || !validation.ValidateEmail(h.config.From) {
			return nil, commonerrors.NewDeliveryFailedError(channel, ErrInvalidAddress)
		}
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	messageID, err := h.sender.Send(ctx, input)
	if err != nil {
		stdErr := commonerrors.NewDeliveryFailedError(channel, err)
		h.logger.Error("delivery failed", stdErr.Fields())
		return nil, stdErr
	}

	h.logger.Info("recommendation delivered", map[string]interface{}{
		"subject":   input.Subject,
		"messageId": messageID,
	})

	return &Output{
		Channel:   channel,
		MessageID: messageID,
		SentAt:    h.now(),
	}, nil
}
