// Package config loads service and CLI settings from a YAML file, SARIMAFLOW_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "SARIMAFLOW"
	DefaultFileName = ".sarimaflow"

	StoreMemory = "memory"
	StoreRedis  = "redis"

	FormatText = "text"
	FormatJSON = "json"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type StoreConfig struct {
	Type  string              `mapstructure:"type"`
	TTL   time.Duration       `mapstructure:"ttl"`
	Redis session.RedisConfig `mapstructure:"redis"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WorkflowConfig holds the defaults the panels start from.
type WorkflowConfig struct {
	Frequency    string  `mapstructure:"frequency"`
	TrainPercent int     `mapstructure:"train_percent"`
	Lags         int     `mapstructure:"lags"`
	Period       int     `mapstructure:"period"`
	Horizon      int     `mapstructure:"horizon"`
	Confidence   float64 `mapstructure:"confidence"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.idle_timeout", 2*time.Minute)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_upload_bytes", int64(10<<20))

	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("store.ttl", session.DefaultTTL)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.dial_timeout", 5*time.Second)
	v.SetDefault("store.redis.read_timeout", 3*time.Second)
	v.SetDefault("store.redis.write_timeout", 3*time.Second)
	v.SetDefault("store.redis.pool_size", 10)
	v.SetDefault("store.redis.key_prefix", session.DefaultKeyPrefix)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", FormatText)

	v.SetDefault("workflow.frequency", string(timedataset.Daily))
	v.SetDefault("workflow.train_percent", timedataset.DefaultTrainPercent)
	v.SetDefault("workflow.lags", sarimaflow.DefaultLags)
	v.SetDefault("workflow.period", sarimaflow.DefaultSeasonalPeriod)
	v.SetDefault("workflow.horizon", sarimaflow.DefaultHorizon)
	v.SetDefault("workflow.confidence", sarimaflow.DefaultForecastConfInt)
}

// New returns a viper instance with defaults and environment binding. Nested keys map
// to variables such as SARIMAFLOW_STORE_REDIS_ADDR.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile, or $HOME/.sarimaflow.yaml when it is empty and present, into v.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultFileName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file, %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if cfg.Store.Redis.TTL == 0 {
		cfg.Store.Redis.TTL = cfg.Store.TTL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("store.type=%q, expected %q or %q, %w", c.Store.Type, StoreMemory, StoreRedis, ErrInvalidConfig)
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("log.format=%q, expected %q or %q, %w", c.Log.Format, FormatText, FormatJSON, ErrInvalidConfig)
	}
	if _, err := timedataset.ParseFrequency(c.Workflow.Frequency); err != nil {
		return fmt.Errorf("workflow.frequency, %w", err)
	}
	if c.Store.TTL <= 0 {
		return fmt.Errorf("store.ttl=%s, must be positive, %w", c.Store.TTL, ErrInvalidConfig)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes=%d, must be positive, %w", c.Server.MaxUploadBytes, ErrInvalidConfig)
	}
	return nil
}

// SetupOptions starts the setup panel from the configured frequency and split.
func (w WorkflowConfig) SetupOptions() *sarimaflow.SetupOptions {
	opt := sarimaflow.NewDefaultSetupOptions()
	if f, err := timedataset.ParseFrequency(w.Frequency); err == nil {
		opt.Frequency = f
	}
	if w.TrainPercent != 0 {
		opt.TrainPercent = w.TrainPercent
	}
	return opt
}

func (w WorkflowConfig) IdentifyOptions() *sarimaflow.IdentifyOptions {
	opt := sarimaflow.NewDefaultIdentifyOptions()
	if w.Lags != 0 {
		opt.Lags = w.Lags
	}
	if w.Period != 0 {
		opt.Period = w.Period
	}
	return opt
}

func (w WorkflowConfig) FitOptions() *sarimaflow.FitOptions {
	opt := sarimaflow.NewDefaultFitOptions()
	if w.Period != 0 {
		opt.Period = w.Period
		opt.Order.M = w.Period
	}
	return opt
}

func (w WorkflowConfig) ForecastOptions() *sarimaflow.ForecastOptions {
	opt := sarimaflow.NewDefaultForecastOptions()
	if w.Horizon != 0 {
		opt.Horizon = w.Horizon
	}
	if w.Confidence != 0 {
		opt.Confidence = w.Confidence
	}
	return opt
}
