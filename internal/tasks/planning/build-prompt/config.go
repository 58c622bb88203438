// internal/tasks/planning/build-prompt/config.go
package buildprompt

import (
	"weekend-planner/internal/common/config"
	"weekend-planner/internal/models"
)

type Config struct {
	Children        []models.ChildProfile
	HomeLocation    string
	Bedtime         string
	LookbackDays    int
	UserMessage     string
	WeatherLocation string
}

func LoadConfig(cfg *config.Config) (*Config, error) {
	children := make([]models.ChildProfile, 0, len(cfg.Family.Children))
	for _, c := range cfg.Family.Children {
		child, err := models.ParseChildProfile(c.Name, c.Birthdate, c.Interests)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &Config{
		Children:        children,
		HomeLocation:    cfg.Family.HomeLocation,
		Bedtime:         cfg.Family.Bedtime,
		LookbackDays:    cfg.History.LookbackDays,
		UserMessage:     cfg.Agent.UserMessage,
		WeatherLocation: cfg.Weather.Location,
	}, nil
}
