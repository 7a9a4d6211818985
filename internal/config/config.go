package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "BOOKING_API"

	IdentityBackendMemory = "memory"
	IdentityBackendRedis  = "redis"
)

type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		Mode         string        `mapstructure:"mode"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	Redis struct {
		URL      string `mapstructure:"url"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`

	JWT struct {
		UseJwt        bool   `mapstructure:"use_jwt"`
		SecretKey     string `mapstructure:"secret_key"`
		ValidIssuer   string `mapstructure:"valid_issuer"`
		ValidAudience string `mapstructure:"valid_audience"`
	} `mapstructure:"jwt"`

	Identity struct {
		Backend    string `mapstructure:"backend"`
		BcryptCost int    `mapstructure:"bcrypt_cost"`
	} `mapstructure:"identity"`

	Observability struct {
		TraceEnabled       bool   `mapstructure:"trace_enabled"`
		TracingEndpointURL string `mapstructure:"tracing_endpoint_url"`
		LogLevel           string `mapstructure:"log_level"`
		Format             string `mapstructure:"log_format"`
		LogSource          bool   `mapstructure:"log_source"`
	} `mapstructure:"observability"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("jwt.use_jwt", true)
	v.SetDefault("identity.backend", IdentityBackendMemory)
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
}

// Load reads config.yaml from ./config or the working directory, merges
// config.<APP_ENV>.yaml when present and applies BOOKING_API_* overrides.
// A missing base file is tolerated; defaults and env fill the gaps.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		slog.Default().Info("No config file found, using defaults and environment")
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		if err := v.MergeInConfig(); err != nil {
			slog.Default().Info("No environment-specific config (optional)", slog.String("env", env))
		} else {
			slog.Default().Info("Environment-specific config loaded", slog.String("env", env))
		}
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// AutomaticEnv only covers keys viper already knows
	for _, key := range []string{"jwt.secret_key", "jwt.valid_issuer", "jwt.valid_audience", "redis.url"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return errors.New("jwt.secret_key is required")
	}

	switch c.Identity.Backend {
	case IdentityBackendMemory:
	case IdentityBackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis identity backend")
		}
	default:
		return fmt.Errorf("unknown identity.backend %q", c.Identity.Backend)
	}
	return nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		slog.Default().Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	return cfg
}
