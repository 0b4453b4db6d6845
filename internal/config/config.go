// Package config loads application configuration from YAML with environment
// variable overrides.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/planner-ranker/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Output   OutputConfig   `yaml:"output"`
	Weights  WeightsConfig  `yaml:"weights"`
	Planner  PlannerConfig  `yaml:"planner"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GetHost returns the configured host, defaulting to localhost.
func (c ServerConfig) GetHost() string {
	if c.Host == "" {
		return "localhost"
	}
	return c.Host
}

// Timeout returns the request timeout as a duration.
func (c ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OutputConfig holds settings for generated workbook files.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// WeightsConfig holds the default scoring weights, used when a processing
// request does not carry its own.
type WeightsConfig struct {
	CTR     float64 `yaml:"ctr"`
	EPC     float64 `yaml:"epc"`
	Revenue float64 `yaml:"revenue"`
}

// ToWeightConfig converts the YAML shape to the domain weight config,
// filling unset weights with the default.
func (c WeightsConfig) ToWeightConfig() domain.WeightConfig {
	return domain.WeightConfig{CTR: c.CTR, EPC: c.EPC, Revenue: c.Revenue}.WithDefaults()
}

// PlannerConfig holds ranking engine settings.
type PlannerConfig struct {
	// LookbackDays bounds which historical records a database-sourced run
	// loads. The avgRevenue denominator stays fixed at 7 regardless.
	LookbackDays int `yaml:"lookback_days"`
}

// AlertsConfig holds outbound webhook alerting settings.
type AlertsConfig struct {
	Enabled        bool    `yaml:"enabled"`
	WebhookURL     string  `yaml:"webhook_url"`
	EPCWarning     float64 `yaml:"epc_warning"`
	EPCCritical    float64 `yaml:"epc_critical"`
	CTRWarning     float64 `yaml:"ctr_warning"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the webhook request timeout as a duration.
func (c AlertsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig holds plan store and artifact archive settings.
type StorageConfig struct {
	// Type selects the plan store backend: "local" or "aws".
	Type        string `yaml:"type"`
	LocalPath   string `yaml:"local_path"`
	DynamoTable string `yaml:"dynamo_table"`
	S3Bucket    string `yaml:"s3_bucket"`
	AWSRegion   string `yaml:"aws_region"`
	AWSProfile  string `yaml:"aws_profile"`
}

// GetAWSProfile returns the profile, honoring the AWS_PROFILE env override.
func (c StorageConfig) GetAWSProfile() string {
	if p := os.Getenv("AWS_PROFILE"); p != "" {
		return p
	}
	return c.AWSProfile
}

// DatabaseConfig holds the optional Postgres history repository settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the optional rankings cache settings.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = 60
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if cfg.Planner.LookbackDays == 0 {
		cfg.Planner.LookbackDays = domain.HistoryWindowDays
	}
	if cfg.Alerts.TimeoutSeconds == 0 {
		cfg.Alerts.TimeoutSeconds = 10
	}
	if cfg.Alerts.EPCWarning == 0 {
		cfg.Alerts.EPCWarning = 1.0
	}
	if cfg.Alerts.EPCCritical == 0 {
		cfg.Alerts.EPCCritical = 0.25
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "data"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if url := os.Getenv("ALERT_WEBHOOK_URL"); url != "" {
		cfg.Alerts.WebhookURL = url
		cfg.Alerts.Enabled = true
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Storage.S3Bucket = bucket
	}
	if table := os.Getenv("DYNAMO_TABLE"); table != "" {
		cfg.Storage.DynamoTable = table
	}
	if dir := os.Getenv("OUTPUT_DIR"); dir != "" {
		cfg.Output.Dir = dir
	}

	return cfg, nil
}
