package deliveroutput

import (
	"time"

	"weekend-planner/internal/common/config"
)

const (
	ChannelSES  = "ses"
	ChannelSMTP = "smtp"
	ChannelSNS  = "sns"
	ChannelLog  = "log"
)

type Config struct {
	Channel  string
	To       string
	From     string
	Timeout  time.Duration
	Region   string
	TopicARN string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	UseTLS       bool
}

func LoadConfig(cfg *config.Config) *Config {
	d := cfg.Delivery
	return &Config{
		Channel:      d.Channel,
		To:           d.To,
		From:         d.From,
		Timeout:      config.GetDuration(d.Timeout),
		Region:       cfg.Integrations.AWS.Region,
		TopicARN:     d.SNS.TopicARN,
		SMTPHost:     d.SMTP.Host,
		SMTPPort:     d.SMTP.Port,
		SMTPUsername: d.SMTP.Username,
		SMTPPassword: d.SMTP.Password,
		UseTLS:       d.SMTP.UseTLS,
	}
}
