package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string            `yaml:"environment" default:"development"`
	Server      ServerConfig      `yaml:"server"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
	Tushare     TushareConfig     `yaml:"tushare"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Calendar    CalendarConfig    `yaml:"calendar"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" default:"[\"*\"]"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type LoggingConfig struct {
	Level     string `yaml:"level" default:"info"`
	Format    string `yaml:"format" default:"json"`
	Output    string `yaml:"output" default:"stdout"`
	Collector struct {
		Enabled        bool          `yaml:"enabled"`
		Interval       time.Duration `yaml:"interval" default:"30s"`
		CountThreshold int           `yaml:"count_threshold" default:"100"`
		Topic          string        `yaml:"topic" default:"stockpull.logs"`
	} `yaml:"collector"`
}

// TushareConfig describes the upstream quote provider.
type TushareConfig struct {
	Token       string        `yaml:"token"`
	BaseURL     string        `yaml:"base_url" default:"http://api.tushare.pro"`
	MinInterval time.Duration `yaml:"min_interval" default:"300ms"`
	Timeout     time.Duration `yaml:"timeout" default:"30s"`
	PageSize    int           `yaml:"page_size" default:"6000"`
	MaxPages    int           `yaml:"max_pages" default:"5"`
}

type AggregationConfig struct {
	DefaultLimit  int           `yaml:"default_limit" default:"100"`
	MaxLimit      int           `yaml:"max_limit" default:"6000"`
	TopIndustries int           `yaml:"top_industries" default:"10"`
	Timeout       time.Duration `yaml:"timeout" default:"45s"`
	CalendarMIC   string        `yaml:"calendar_mic" default:"xshg"`
}

type CalendarConfig struct {
	Exchanges    []string `yaml:"exchanges" default:"[\"SSE\",\"SZSE\"]"`
	MaxRangeDays int      `yaml:"max_range_days" default:"366"`
	Concurrency  int      `yaml:"concurrency" default:"4"`
}

type RateLimitConfig struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     int     `yaml:"capacity" default:"30"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"5"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"stockpull"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	RequiredAcks int      `yaml:"required_acks" default:"1"`
	Compression  string   `yaml:"compression" default:"snappy"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"50ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
		HashByKey    bool          `yaml:"hash_by_key"`
		AutoCreate   bool          `yaml:"auto_create_topic"`
	} `yaml:"producer"`
}

// envOverrides lists the settings that may come from the environment.
// Each key is looked up as STOCKPULL_<NAME> first, then <NAME>.
type envOverrides struct {
	Environment    string         `envconfig:"ENVIRONMENT"`
	Port           *int           `envconfig:"PORT"`
	LogLevel       string         `envconfig:"LOG_LEVEL"`
	TushareToken   string         `envconfig:"TUSHARE_TOKEN"`
	TushareBaseURL string         `envconfig:"TUSHARE_BASE_URL"`
	MinInterval    *time.Duration `envconfig:"TUSHARE_MIN_INTERVAL"`
	RedisEnabled   *bool          `envconfig:"REDIS_ENABLED"`
	RedisHost      string         `envconfig:"REDIS_HOST"`
	RedisPassword  string         `envconfig:"REDIS_PASSWORD"`
	KafkaBrokers   []string       `envconfig:"KAFKA_BROKERS"`
	Exchanges      []string       `envconfig:"CALENDAR_EXCHANGES"`
}

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML (or defaults when path is empty)
// and overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		c, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("stockpull", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.Port != nil {
		c.Server.Port = *env.Port
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.TushareToken != "" {
		c.Tushare.Token = env.TushareToken
	}
	if env.TushareBaseURL != "" {
		c.Tushare.BaseURL = env.TushareBaseURL
	}
	if env.MinInterval != nil {
		c.Tushare.MinInterval = *env.MinInterval
	}
	if env.RedisEnabled != nil {
		c.Redis.Enabled = *env.RedisEnabled
	}
	if env.RedisHost != "" {
		c.Redis.Host = env.RedisHost
	}
	if env.RedisPassword != "" {
		c.Redis.Password = env.RedisPassword
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
	}
	if len(env.Exchanges) > 0 {
		c.Calendar.Exchanges = normalizeList(env.Exchanges)
	}
	return nil
}

// Validate checks if the configuration is valid. A missing provider token
// is not an error here; the source client reports it when constructed.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Tushare.BaseURL == "" {
		return fmt.Errorf("tushare.base_url is required")
	}
	if c.Tushare.MinInterval < 0 {
		return fmt.Errorf("tushare.min_interval must not be negative")
	}
	if c.Aggregation.MaxLimit <= 0 {
		return fmt.Errorf("aggregation.max_limit must be positive")
	}
	if c.Aggregation.DefaultLimit <= 0 || c.Aggregation.DefaultLimit > c.Aggregation.MaxLimit {
		return fmt.Errorf("aggregation.default_limit must be within 1..%d", c.Aggregation.MaxLimit)
	}
	if len(c.Calendar.Exchanges) == 0 {
		return fmt.Errorf("calendar.exchanges cannot be empty")
	}
	if c.Calendar.MaxRangeDays <= 0 {
		return fmt.Errorf("calendar.max_range_days must be positive")
	}
	if c.Logging.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("logging.collector requires kafka.brokers")
	}
	return nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
