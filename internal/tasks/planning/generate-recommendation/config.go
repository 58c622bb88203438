// internal/tasks/planning/generate-recommendation/config.go
package generaterecommendation

import (
	"time"

	"weekend-planner/internal/common/config"
)

type Config struct {
	MaxIterations  int
	RecursionLimit int
	ParallelTools  bool
	Timeout        time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	// The whole loop shares one deadline: one budget per model round.
	perCall := config.GetDuration(cfg.LLM.Timeout)
	return &Config{
		MaxIterations:  cfg.Agent.MaxIterations,
		RecursionLimit: cfg.Agent.RecursionLimit,
		ParallelTools:  cfg.Agent.ParallelTools,
		Timeout:        perCall * time.Duration(cfg.Agent.MaxIterations+1),
	}
}
