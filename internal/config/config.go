package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Harsh-BH/datalake/internal/domain"
)

// Config holds all configuration for the datalake CLI.
type Config struct {
	AWS      AWSConfig
	Lake     LakeConfig
	Feed     FeedConfig
	Query    QueryConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Metrics  MetricsConfig
}

type AWSConfig struct {
	Region          string `mapstructure:"AWS_REGION"`
	EndpointURL     string `mapstructure:"AWS_ENDPOINT_URL"`
	AccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `mapstructure:"AWS_SESSION_TOKEN"`
}

type LakeConfig struct {
	Bucket        string        `mapstructure:"AWS_BUCKET_NAME"`
	Database      string        `mapstructure:"GLUE_DATABASE_NAME"`
	Table         string        `mapstructure:"LAKE_TABLE_NAME"`
	RawPrefix     string        `mapstructure:"LAKE_RAW_PREFIX"`
	RawKey        string        `mapstructure:"LAKE_RAW_KEY"`
	ResultsPrefix string        `mapstructure:"LAKE_RESULTS_PREFIX"`
	SettleDelay   time.Duration `mapstructure:"LAKE_SETTLE_DELAY"`
	StrictIngest  bool          `mapstructure:"LAKE_STRICT_INGEST"`
}

type FeedConfig struct {
	APIKey   string        `mapstructure:"API_KEY"`
	Endpoint string        `mapstructure:"NBA_ENDPOINT"`
	Timeout  time.Duration `mapstructure:"LAKE_FEED_TIMEOUT"`
}

type QueryConfig struct {
	PollInterval time.Duration `mapstructure:"LAKE_POLL_INTERVAL"`
	MaxWait      time.Duration `mapstructure:"LAKE_QUERY_MAX_WAIT"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"DATABASE_URL"`
}

type RedisConfig struct {
	URL string `mapstructure:"REDIS_URL"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"RABBITMQ_URL"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"LAKE_PUSHGATEWAY_URL"`
}

// Load reads configuration from the environment and an optional env file.
// An empty envFile means ".env" in the working directory.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	if envFile == "" {
		envFile = ".env"
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("LAKE_TABLE_NAME", "nba_players")
	v.SetDefault("LAKE_RAW_PREFIX", "raw-data/")
	v.SetDefault("LAKE_RAW_KEY", "raw-data/nba_player_data.jsonl")
	v.SetDefault("LAKE_RESULTS_PREFIX", "athena-results/")
	v.SetDefault("LAKE_SETTLE_DELAY", 5*time.Second)
	v.SetDefault("LAKE_STRICT_INGEST", false)
	v.SetDefault("LAKE_FEED_TIMEOUT", 30*time.Second)
	v.SetDefault("LAKE_POLL_INTERVAL", 2*time.Second)
	v.SetDefault("LAKE_QUERY_MAX_WAIT", time.Duration(0))

	// The env file is optional; real environment variables take precedence.
	_ = v.ReadInConfig()

	cfg := &Config{}
	cfg.AWS.Region = v.GetString("AWS_REGION")
	cfg.AWS.EndpointURL = v.GetString("AWS_ENDPOINT_URL")
	cfg.AWS.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	cfg.AWS.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	cfg.AWS.SessionToken = v.GetString("AWS_SESSION_TOKEN")
	cfg.Lake.Bucket = v.GetString("AWS_BUCKET_NAME")
	cfg.Lake.Database = v.GetString("GLUE_DATABASE_NAME")
	cfg.Lake.Table = v.GetString("LAKE_TABLE_NAME")
	cfg.Lake.RawPrefix = v.GetString("LAKE_RAW_PREFIX")
	cfg.Lake.RawKey = v.GetString("LAKE_RAW_KEY")
	cfg.Lake.ResultsPrefix = v.GetString("LAKE_RESULTS_PREFIX")
	cfg.Lake.SettleDelay = v.GetDuration("LAKE_SETTLE_DELAY")
	cfg.Lake.StrictIngest = v.GetBool("LAKE_STRICT_INGEST")
	cfg.Feed.APIKey = v.GetString("API_KEY")
	cfg.Feed.Endpoint = v.GetString("NBA_ENDPOINT")
	cfg.Feed.Timeout = v.GetDuration("LAKE_FEED_TIMEOUT")
	cfg.Query.PollInterval = v.GetDuration("LAKE_POLL_INTERVAL")
	cfg.Query.MaxWait = v.GetDuration("LAKE_QUERY_MAX_WAIT")
	cfg.Database.URL = v.GetString("DATABASE_URL")
	cfg.Redis.URL = v.GetString("REDIS_URL")
	cfg.RabbitMQ.URL = v.GetString("RABBITMQ_URL")
	cfg.Metrics.PushgatewayURL = v.GetString("LAKE_PUSHGATEWAY_URL")

	return cfg, nil
}

// MinPollInterval is the shortest accepted LAKE_POLL_INTERVAL.
const MinPollInterval = 100 * time.Millisecond

// Workflow selects which keys Validate requires.
type Workflow int

const (
	WorkflowProvision Workflow = iota
	WorkflowTeardown
	WorkflowQuery
)

// Validate checks every key the workflow needs and reports all missing keys at once.
func (c *Config) Validate(w Workflow) error {
	required := map[string]string{
		"AWS_BUCKET_NAME":    c.Lake.Bucket,
		"GLUE_DATABASE_NAME": c.Lake.Database,
	}
	if w == WorkflowProvision {
		required["API_KEY"] = c.Feed.APIKey
		required["NBA_ENDPOINT"] = c.Feed.Endpoint
	}

	var missing []string
	for _, key := range []string{"AWS_BUCKET_NAME", "GLUE_DATABASE_NAME", "API_KEY", "NBA_ENDPOINT"} {
		val, ok := required[key]
		if ok && strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, strings.Join(missing, ", "))
	}

	// A bare number parses as nanoseconds, so "2" would poll in a busy loop.
	if c.Query.PollInterval < MinPollInterval {
		return fmt.Errorf("config: LAKE_POLL_INTERVAL must be at least %s (use a unit, e.g. 2s), got %s",
			MinPollInterval, c.Query.PollInterval)
	}
	if c.Query.MaxWait < 0 || c.Lake.SettleDelay < 0 {
		return fmt.Errorf("config: LAKE_QUERY_MAX_WAIT and LAKE_SETTLE_DELAY must not be negative")
	}
	return nil
}
