package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Redis        RedisConfig        `yaml:"redis"`
	MySQL        MySQLConfig        `yaml:"mysql"`
	Queue        QueueConfig        `yaml:"queue"`
	Logger       LoggerConfig       `yaml:"logger"`
	Cluster      ClusterConfig      `yaml:"cluster"`
	AWS          AWSConfig          `yaml:"aws"`
	Anthropic    AnthropicConfig    `yaml:"anthropic"`
	Predictor    PredictorConfig    `yaml:"predictor"`
	Notification NotificationConfig `yaml:"notification"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // API key for request authentication (optional, if empty, auth is disabled)
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// QueueConfig queue configuration
type QueueConfig struct {
	Concurrency int `yaml:"concurrency"`  // queue processing concurrency
	TaskTimeout int `yaml:"task_timeout"` // task timeout (seconds)
	// Prediction tasks never retry: a failed cycle is terminal.
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// ClusterConfig target cluster configuration
type ClusterConfig struct {
	Name           string `yaml:"name"`            // EKS cluster name
	Namespace      string `yaml:"namespace"`       // namespace the batch jobs run in
	LabelSelector  string `yaml:"label_selector"`  // optional selector for job listing
	Kubeconfig     string `yaml:"kubeconfig"`      // path to kubeconfig; empty = in-cluster
	ServiceAccount string `yaml:"service_account"` // job service account, for IAM role discovery
}

// AWSConfig AWS configuration for the metadata collectors
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`     // optional, default credential chain when empty
	SecretAccessKey string `yaml:"secret_access_key"` // optional
	BucketFilter    string `yaml:"bucket_filter"`     // substring filter for S3 bucket enumeration
}

// AnthropicConfig prediction service configuration
type AnthropicConfig struct {
	APIKey         string  `yaml:"api_key"` // overridden by ANTHROPIC_API_KEY when set
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// PredictorConfig prediction pipeline configuration
type PredictorConfig struct {
	CatalogPath     string `yaml:"catalog_path"`     // YAML job catalog file
	LookbackDays    int    `yaml:"lookback_days"`    // execution history window
	ScanInterval    int    `yaml:"scan_interval"`    // schedule scan period (seconds)
	ScanHorizon     int    `yaml:"scan_horizon"`     // enqueue jobs due within this window (seconds)
	SyncInterval    int    `yaml:"sync_interval"`    // history sync period (seconds)
	CacheTTLSeconds int    `yaml:"cache_ttl"`        // latest-prediction cache TTL
	OutputDir       string `yaml:"output_dir"`       // saved prediction JSON files; empty disables the file sink
}

// NotificationConfig webhook notification configuration
type NotificationConfig struct {
	WebhookURL string `yaml:"webhook_url"` // overridden by PREFLIGHT_WEBHOOK_URL when set
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	GlobalConfig = &cfg
	return nil
}

func (c *Config) applyDefaults() {
	if c.Queue.Concurrency <= 0 {
		c.Queue.Concurrency = 4
	}
	if c.Queue.TaskTimeout <= 0 {
		c.Queue.TaskTimeout = 300
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-3-5-sonnet-20241022"
	}
	if c.Anthropic.MaxTokens <= 0 {
		c.Anthropic.MaxTokens = 4096
	}
	if c.Anthropic.Temperature <= 0 {
		c.Anthropic.Temperature = 0.3
	}
	if c.Anthropic.TimeoutSeconds <= 0 {
		c.Anthropic.TimeoutSeconds = 120
	}
	if c.Predictor.LookbackDays <= 0 {
		c.Predictor.LookbackDays = 30
	}
	if c.Predictor.ScanInterval <= 0 {
		c.Predictor.ScanInterval = 300
	}
	if c.Predictor.ScanHorizon <= 0 {
		c.Predictor.ScanHorizon = 3600
	}
	if c.Predictor.SyncInterval <= 0 {
		c.Predictor.SyncInterval = 600
	}
	if c.Predictor.CacheTTLSeconds <= 0 {
		c.Predictor.CacheTTLSeconds = 3600
	}
	if c.Cluster.Namespace == "" {
		c.Cluster.Namespace = "default"
	}
	if c.Cluster.ServiceAccount == "" {
		c.Cluster.ServiceAccount = "abinitio-batch-sa"
	}
	if c.AWS.BucketFilter == "" {
		c.AWS.BucketFilter = "abinitio"
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Predictor.CatalogPath == "" {
		return fmt.Errorf("predictor.catalog_path is required")
	}
	return nil
}

// LookbackWindow returns the history window as a duration.
func (c *PredictorConfig) LookbackWindow() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

// CacheTTL returns the latest-prediction cache TTL as a duration.
func (c *PredictorConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
