// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	Family       FamilyConfig      `mapstructure:"family"`
	Weather      WeatherConfig     `mapstructure:"weather"`
	LLM          LLMConfig         `mapstructure:"llm"`
	Agent        AgentConfig       `mapstructure:"agent"`
	History      HistoryConfig     `mapstructure:"history"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Tools        ToolsConfig       `mapstructure:"tools"`
	Delivery     DeliveryConfig    `mapstructure:"delivery"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	Logging      LoggingConfig     `mapstructure:"logging"`
	Metrics      MetricsConfig     `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// --- Family Profile ---

// FamilyConfig is the static family profile. It is read-only at runtime.
type FamilyConfig struct {
	Children     []ChildConfig `mapstructure:"children"`
	HomeLocation string        `mapstructure:"home_location"`
	Bedtime      string        `mapstructure:"bedtime"`
}

type ChildConfig struct {
	Name      string   `mapstructure:"name"`
	Birthdate string   `mapstructure:"birthdate"` // YYYY-MM-DD
	Interests []string `mapstructure:"interests"`
}

// --- External Data Sources ---

type WeatherConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Location string `mapstructure:"location"`
	Timezone string `mapstructure:"timezone"`
	Days     int    `mapstructure:"days"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// ModelConfig selects a provider and model for one kind of model call.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | anthropic
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type LLMConfig struct {
	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`
	Anthropic struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"anthropic"`

	Agent      ModelConfig `mapstructure:"agent"`
	Extraction ModelConfig `mapstructure:"extraction"`
	Scraper    ModelConfig `mapstructure:"scraper"`
	Timeout    int         `mapstructure:"timeout"` // milliseconds
}

// AgentConfig bounds the tool-using recommendation loop.
type AgentConfig struct {
	MaxIterations  int    `mapstructure:"max_iterations"`
	RecursionLimit int    `mapstructure:"recursion_limit"`
	ParallelTools  bool   `mapstructure:"parallel_tools"`
	UserMessage    string `mapstructure:"user_message"`
}

// --- Storage ---

type HistoryConfig struct {
	Backend      string `mapstructure:"backend"` // firestore | postgres | redis
	Collection   string `mapstructure:"collection"`
	LookbackDays int    `mapstructure:"lookback_days"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Firestore FirestoreConfig `mapstructure:"firestore"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	DatabaseID      string `mapstructure:"database_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string. A configured URL wins.
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// --- Fetch Tools ---

type ToolsConfig struct {
	RegistryPath   string `mapstructure:"registry_path"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
	MaxPageChars   int    `mapstructure:"max_page_chars"`
	UserAgent      string `mapstructure:"user_agent"`
	CircuitBreaker struct {
		MaxFailures int `mapstructure:"max_failures"`
		OpenTimeout int `mapstructure:"open_timeout"` // milliseconds
	} `mapstructure:"circuit_breaker"`
}

// --- Delivery ---

type DeliveryConfig struct {
	Channel       string `mapstructure:"channel"` // ses | smtp | sns | log
	To            string `mapstructure:"to"`
	From          string `mapstructure:"from"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`

	SNS struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// IntegrationConfig holds settings for cloud provider SDKs.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the once-per-run Pushgateway push.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name"`
}
