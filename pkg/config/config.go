package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Provider   ProviderConfig   `mapstructure:"provider"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Review     ReviewConfig     `mapstructure:"review"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

type ProviderConfig struct {
	InstanceID string `mapstructure:"instance_id"`
	// DefaultTimezone applies when a schedule carries no timezone of its own.
	DefaultTimezone string `mapstructure:"default_timezone"`
}

type DispatcherConfig struct {
	DefaultMaxAttempts int           `mapstructure:"default_max_attempts"`
	RetryBaseDelay     time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay      time.Duration `mapstructure:"retry_max_delay"`
	FailureThreshold   int           `mapstructure:"failure_threshold"`
	ThrottleWindow     time.Duration `mapstructure:"throttle_window"`
}

type ReviewConfig struct {
	GracePeriod      time.Duration `mapstructure:"grace_period"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	StaleFailureAge  time.Duration `mapstructure:"stale_failure_age"`
	IgnoredPauseAge  time.Duration `mapstructure:"ignored_pause_age"`
}

// AgentConfig points at the agent runtime that performs the actual work.
// Empty URLs degrade to log-only stand-ins, which keeps a single-binary
// development setup running without an agent.
type AgentConfig struct {
	InvokeURL string        `mapstructure:"invoke_url"`
	StateURL  string        `mapstructure:"state_url"`
	SignalURL string        `mapstructure:"signal_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	Database              string        `mapstructure:"database"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
}

type ServerConfig struct {
	IP             string        `mapstructure:"ip"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("provider.instance_id", "scheduler-001")
	viper.SetDefault("provider.default_timezone", "UTC")

	viper.SetDefault("dispatcher.default_max_attempts", 3)
	viper.SetDefault("dispatcher.retry_base_delay", "30s")
	viper.SetDefault("dispatcher.retry_max_delay", "30m")
	viper.SetDefault("dispatcher.failure_threshold", 3)
	viper.SetDefault("dispatcher.throttle_window", "1h")

	viper.SetDefault("review.grace_period", "24h")
	viper.SetDefault("review.failure_threshold", 3)
	viper.SetDefault("review.stale_failure_age", "72h")
	viper.SetDefault("review.ignored_pause_age", "720h")

	viper.SetDefault("agent.timeout", "60s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.max_connections", 20)
	viper.SetDefault("database.max_idle_connections", 10)
	viper.SetDefault("database.connection_max_lifetime", "1h")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.max_header_bytes", 1048576)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
