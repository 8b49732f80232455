package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/podelme/podel/pkg/logger"
)

// Config represents the runtime configuration for the Podel backend. It is
// constructed once at startup and passed by reference to whatever needs it;
// nothing reads configuration through package-level state.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Site       SiteConfig       `mapstructure:"site"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures authentication-related settings.
type AuthConfig struct {
	Session SessionSettings `mapstructure:"session"`
	Local   LocalSettings   `mapstructure:"local"`
}

// SessionSettings configures the session subsystem. The session lifetime
// itself is fixed; only the store round-trip timeout and the cookie carrying
// the token are tunable.
type SessionSettings struct {
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
	CookieName   string        `mapstructure:"cookie_name"`
}

// LocalSettings defines controls for the password-hashing pool.
type LocalSettings struct {
	HashWorkers int `mapstructure:"hash_workers"`
}

// SiteConfig holds site-wide presentation settings.
type SiteConfig struct {
	Title           string `mapstructure:"title"`
	DefaultLanguage string `mapstructure:"default_language"`
}

// MonitoringConfig enables metrics and health endpoints.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible
// defaults, a YAML file, and PODEL_* environment overrides.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("PODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Debug("no config file found, using defaults and environment")
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/podel.db")

	v.SetDefault("auth.session.store_timeout", "5s")
	v.SetDefault("auth.session.cookie_name", "podel_session")
	v.SetDefault("auth.local.hash_workers", 4)

	v.SetDefault("site.title", "Podela.me")
	v.SetDefault("site.default_language", "en-US")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Auth.Session.StoreTimeout < 0 {
		return errors.New("auth.session.store_timeout must not be negative")
	}
	if strings.TrimSpace(cfg.Auth.Session.CookieName) == "" {
		return errors.New("auth.session.cookie_name must not be empty")
	}
	return nil
}
