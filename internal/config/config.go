package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	envPrefix = "WWI"
)

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Mode        string `mapstructure:"mode"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	PoolSize int    `mapstructure:"pool_size"`
	Echo     bool   `mapstructure:"echo"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TokensConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type JoinLimitConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tokens    TokensConfig    `mapstructure:"tokens"`
	JoinLimit JoinLimitConfig `mapstructure:"join_limit"`
}

// Load reads .env (if present), config/config.<CONFIG_ENV>.yaml (if
// present) and WWI_* environment variables, in increasing priority.
// Nested keys use "__" in env names, e.g. WWI_DATABASE__URL.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load without the .env step and with an explicit file.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults and environment")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Tokens.SweepInterval <= 0 {
		cfg.Tokens.SweepInterval = cfg.Tokens.TTL / 2
	}

	log.Info().
		Str("module", "config").
		Str("mode", cfg.App.Mode).
		Int("port", cfg.Server.Port).
		Str("db_driver", cfg.Database.Driver).
		Dur("token_ttl", cfg.Tokens.TTL).
		Msg("config ready")
	return &cfg, nil
}

// setDefaults registers every key, which also makes AutomaticEnv see
// them during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "who-was-i")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.mode", "release")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.static_path", "")
	v.SetDefault("server.read_limit", 32768)
	v.SetDefault("server.ping_period", "54s")
	v.SetDefault("server.secret", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.pool_size", 5)
	v.SetDefault("database.echo", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("tokens.ttl", "10m")
	v.SetDefault("tokens.sweep_interval", "0s")

	v.SetDefault("join_limit.attempts", 10)
	v.SetDefault("join_limit.interval", "1m")
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for the postgres driver (WWI_DATABASE__URL)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	if c.Database.PoolSize <= 0 {
		return errors.New("config: database.pool_size must be positive")
	}
	if c.Tokens.TTL <= 0 {
		return errors.New("config: tokens.ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.JoinLimit.Attempts <= 0 || c.JoinLimit.Interval <= 0 {
		return errors.New("config: join_limit.attempts and join_limit.interval must be positive")
	}
	return nil
}
