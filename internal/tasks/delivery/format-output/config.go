package formatoutput

import "weekend-planner/internal/common/config"

type Config struct {
	SubjectPrefix string
	AppName       string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		SubjectPrefix: cfg.Delivery.SubjectPrefix,
		AppName:       cfg.App.Name,
	}
}
