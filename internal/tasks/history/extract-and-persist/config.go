package extractandpersist

import (
	"time"

	"weekend-planner/internal/common/config"
)

type Config struct {
	ExtractionTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		ExtractionTimeout: config.GetDuration(cfg.LLM.Timeout),
	}
}
