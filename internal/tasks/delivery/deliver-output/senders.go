// internal/tasks/delivery/deliver-output/senders.go
package deliveroutput

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	commonaws "weekend-planner/internal/common/aws"
	"weekend-planner/internal/common/logger"
)

// Sender delivers one formatted message and returns a provider message id.
type Sender interface {
	Channel() string
	Send(ctx context.Context, msg *Input) (string, error)
}

// NewSender builds the sender for cfg.Channel with real provider clients.
func NewSender(ctx context.Context, cfg *Config, log logger.Logger) (Sender, error) {
	switch cfg.Channel {
	case ChannelSES:
		client, err := commonaws.NewSESClient(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		return NewSESSender(client, cfg.From, cfg.To), nil
	case ChannelSNS:
		client, err := commonaws.NewSNSClient(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("create sns client: %w", err)
		}
		return NewSNSSender(client, cfg.TopicARN), nil
	case ChannelSMTP:
		return NewSMTPSender(cfg), nil
	case ChannelLog, "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unsupported delivery channel %q", cfg.Channel)
	}
}

type SESSender struct {
	client commonaws.SESService
	from   string
	to     string
}

func NewSESSender(client commonaws.SESService, from, to string) *SESSender {
	return &SESSender{client: client, from: from, to: to}
}

func (s *SESSender) Channel() string { return ChannelSES }

func (s *SESSender) Send(ctx context.Context, msg *Input) (string, error) {
	out, err := s.client.SendEmail(ctx, commonaws.NewSendEmailInput(s.from, s.to, msg.Subject, msg.Text, msg.HTML))
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

type SNSSender struct {
	client   commonaws.SNSService
	topicARN string
}

func NewSNSSender(client commonaws.SNSService, topicARN string) *SNSSender {
	return &SNSSender{client: client, topicARN: topicARN}
}

func (s *SNSSender) Channel() string { return ChannelSNS }

// Send publishes the plain text only; topics have no HTML body.
func (s *SNSSender) Send(ctx context.Context, msg *Input) (string, error) {
	out, err := s.client.Publish(ctx, commonaws.NewTopicPublishInput(s.topicARN, msg.Subject, msg.Text))
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// LogSender writes the message to the log. Used for local runs.
type LogSender struct {
	logger logger.Logger
}

func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Channel() string { return ChannelLog }

func (s *LogSender) Send(_ context.Context, msg *Input) (string, error) {
	s.logger.Info("weekend recommendation", map[string]interface{}{
		"subject": msg.Subject,
		"text":    msg.Text,
	})
	return "", nil
}
