// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const birthdateLayout = "2006-01-02"

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${VAR} placeholders and applies env overrides, defaults and validation.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills secrets and deployment values from well-known env vars.
func overrideEmptyConfig(cfg *Config) {
	setFromEnv(&cfg.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setFromEnv(&cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Weather.APIKey, "OPENWEATHERMAP_API_KEY")

	setFromEnv(&cfg.Database.Firestore.ProjectID, "FIRESTORE_PROJECT_ID")
	setFromEnv(&cfg.Database.Firestore.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setFromEnv(&cfg.Database.Postgres.URL, "DATABASE_URL")
	setFromEnv(&cfg.Database.Postgres.User, "DB_USER")
	setFromEnv(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setFromEnv(&cfg.Database.Redis.URL, "REDIS_URL")

	setFromEnv(&cfg.Delivery.To, "EMAIL_TO")
	setFromEnv(&cfg.Delivery.From, "EMAIL_FROM")
	setFromEnv(&cfg.Delivery.SNS.TopicARN, "SNS_TOPIC_ARN")
	setFromEnv(&cfg.Integrations.AWS.Region, "AWS_REGION")
	setFromEnv(&cfg.Metrics.PushgatewayURL, "PUSHGATEWAY_URL")

	// The collection is switched per environment (recommendations_test in tests).
	if val := os.Getenv("FIRESTORE_COLLECTION"); val != "" {
		cfg.History.Collection = val
	}
}

func setFromEnv(dst *string, key string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "weekend-planner"
	}

	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = "https://api.openweathermap.org"
	}
	if cfg.Weather.Location == "" {
		cfg.Weather.Location = "Columbus,OH,US"
	}
	if cfg.Weather.Timezone == "" {
		cfg.Weather.Timezone = "America/New_York"
	}
	if cfg.Weather.Days == 0 {
		cfg.Weather.Days = 3
	}
	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = 10000
	}

	applyModelDefaults(&cfg.LLM.Agent, "gpt-4.1", 0.7, 4096)
	applyModelDefaults(&cfg.LLM.Extraction, "gpt-4o-mini", 0, 512)
	applyModelDefaults(&cfg.LLM.Scraper, "gpt-4o-mini", 0, 4096)
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120000
	}

	if cfg.Agent.MaxIterations == 0 {
		cfg.Agent.MaxIterations = 10
	}
	if cfg.Agent.RecursionLimit == 0 {
		cfg.Agent.RecursionLimit = 25
	}
	if cfg.Agent.UserMessage == "" {
		cfg.Agent.UserMessage = "Please suggest some fun family activities for this weekend."
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = "firestore"
	}
	if cfg.History.Collection == "" {
		cfg.History.Collection = "recommendations"
	}
	if cfg.History.LookbackDays == 0 {
		cfg.History.LookbackDays = 30
	}
	if cfg.History.Timeout == 0 {
		cfg.History.Timeout = 10000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.KeyPrefix == "" {
		cfg.Database.Redis.KeyPrefix = "weekend-planner"
	}

	if cfg.Tools.RegistryPath == "" {
		cfg.Tools.RegistryPath = "configs/venues.json"
	}
	if cfg.Tools.Timeout == 0 {
		cfg.Tools.Timeout = 30000
	}
	if cfg.Tools.MaxPageChars == 0 {
		cfg.Tools.MaxPageChars = 8000
	}
	if cfg.Tools.UserAgent == "" {
		cfg.Tools.UserAgent = "weekend-planner/1.0"
	}
	if cfg.Tools.CircuitBreaker.MaxFailures == 0 {
		cfg.Tools.CircuitBreaker.MaxFailures = 2
	}
	if cfg.Tools.CircuitBreaker.OpenTimeout == 0 {
		cfg.Tools.CircuitBreaker.OpenTimeout = 60000
	}

	if cfg.Delivery.Channel == "" {
		cfg.Delivery.Channel = "log"
	}
	if cfg.Delivery.SubjectPrefix == "" {
		cfg.Delivery.SubjectPrefix = "Weekend plans"
	}
	if cfg.Delivery.Timeout == 0 {
		cfg.Delivery.Timeout = 30000
	}
	if cfg.Delivery.SMTP.Port == 0 {
		cfg.Delivery.SMTP.Port = 587
	}
	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "us-east-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.JobName == "" {
		cfg.Metrics.JobName = "weekend_planner"
	}
}

func applyModelDefaults(m *ModelConfig, model string, temperature float64, maxTokens int) {
	if m.Provider == "" {
		m.Provider = "openai"
	}
	if m.Model == "" {
		m.Model = model
		m.Temperature = temperature
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = maxTokens
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.LLM.OpenAI.APIKey == "" {
		return fmt.Errorf("llm.openai.api_key (OPENAI_API_KEY) is required")
	}
	if cfg.LLM.Agent.Provider != "openai" {
		return fmt.Errorf("llm.agent.provider must be openai, got %q", cfg.LLM.Agent.Provider)
	}
	for name, m := range map[string]ModelConfig{"extraction": cfg.LLM.Extraction, "scraper": cfg.LLM.Scraper} {
		switch m.Provider {
		case "openai":
		case "anthropic":
			if cfg.LLM.Anthropic.APIKey == "" {
				return fmt.Errorf("llm.%s uses anthropic but llm.anthropic.api_key (ANTHROPIC_API_KEY) is empty", name)
			}
		default:
			return fmt.Errorf("llm.%s.provider must be openai or anthropic, got %q", name, m.Provider)
		}
	}

	if cfg.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent.max_iterations must be positive")
	}
	if cfg.Agent.RecursionLimit < 1 {
		return fmt.Errorf("agent.recursion_limit must be positive")
	}

	if len(cfg.Family.Children) == 0 {
		return fmt.Errorf("family.children must list at least one child")
	}
	for i, child := range cfg.Family.Children {
		if child.Name == "" {
			return fmt.Errorf("family.children[%d].name is required", i)
		}
		if _, err := time.Parse(birthdateLayout, child.Birthdate); err != nil {
			return fmt.Errorf("family.children[%d].birthdate %q must be YYYY-MM-DD", i, child.Birthdate)
		}
	}

	if cfg.History.LookbackDays < 1 {
		return fmt.Errorf("history.lookback_days must be positive")
	}
	switch cfg.History.Backend {
	case "firestore":
		if cfg.Database.Firestore.ProjectID == "" {
			return fmt.Errorf("database.firestore.project_id (FIRESTORE_PROJECT_ID) is required for the firestore backend")
		}
	case "postgres":
		if cfg.Database.Postgres.URL == "" && (cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "") {
			return fmt.Errorf("database.postgres.url or host/database is required for the postgres backend")
		}
	case "redis":
		if cfg.Database.Redis.URL == "" && cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.url or address is required for the redis backend")
		}
	default:
		return fmt.Errorf("history.backend must be firestore, postgres or redis, got %q", cfg.History.Backend)
	}

	switch cfg.Delivery.Channel {
	case "ses", "smtp":
		if cfg.Delivery.To == "" || cfg.Delivery.From == "" {
			return fmt.Errorf("delivery.to and delivery.from are required for the %s channel", cfg.Delivery.Channel)
		}
		if cfg.Delivery.Channel == "smtp" && cfg.Delivery.SMTP.Host == "" {
			return fmt.Errorf("delivery.smtp.host is required for the smtp channel")
		}
	case "sns":
		if cfg.Delivery.SNS.TopicARN == "" {
			return fmt.Errorf("delivery.sns.topic_arn is required for the sns channel")
		}
	case "log":
	default:
		return fmt.Errorf("delivery.channel must be ses, smtp, sns or log, got %q", cfg.Delivery.Channel)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
