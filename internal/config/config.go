// Package config loads the service configuration from a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains runtime configuration for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Broker    BrokerConfig    `yaml:"broker" mapstructure:"broker"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Dedup     DedupConfig     `yaml:"dedup" mapstructure:"dedup"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Resources ResourcesConfig `yaml:"resources" mapstructure:"resources"`
}

// ServerConfig captures the debug/health HTTP server settings.
type ServerConfig struct {
	Port                int `yaml:"port" mapstructure:"port"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds" mapstructure:"idle_timeout_seconds"`
}

// ReadTimeout returns the configured read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the configured idle timeout as a duration.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// BrokerConfig captures broker connection settings and the topics this
// service consumes and responds on.
type BrokerConfig struct {
	URL                  string   `yaml:"url" mapstructure:"url"`
	Username             string   `yaml:"username" mapstructure:"username"`
	Password             string   `yaml:"password" mapstructure:"password"`
	MaxReconnects        int      `yaml:"max_reconnects" mapstructure:"max_reconnects"`
	ReconnectWaitSeconds int      `yaml:"reconnect_wait_seconds" mapstructure:"reconnect_wait_seconds"`
	RetryIntervalSeconds int      `yaml:"retry_interval_seconds" mapstructure:"retry_interval_seconds"`
	RetryMaxAttempts     int      `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
	Queue                string   `yaml:"queue" mapstructure:"queue"`
	InboundPatterns      []string `yaml:"inbound_patterns" mapstructure:"inbound_patterns"`
	OutboundSubject      string   `yaml:"outbound_subject" mapstructure:"outbound_subject"`
}

// ReconnectWait returns the reconnect wait as a time.Duration.
func (b BrokerConfig) ReconnectWait() time.Duration {
	return time.Duration(b.ReconnectWaitSeconds) * time.Second
}

// RetryInterval returns the connection retry interval as a time.Duration.
func (b BrokerConfig) RetryInterval() time.Duration {
	return time.Duration(b.RetryIntervalSeconds) * time.Second
}

// DatabaseConfig captures document store connection settings.
type DatabaseConfig struct {
	URI                   string `yaml:"uri" mapstructure:"uri"`
	Name                  string `yaml:"name" mapstructure:"name"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds" mapstructure:"connect_timeout_seconds"`
	InMemory              bool   `yaml:"in_memory" mapstructure:"in_memory"`
}

// ConnectTimeout returns the store connection timeout as a time.Duration.
func (d DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutSeconds) * time.Second
}

// DedupConfig captures duplicate-message suppression settings.
type DedupConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	RedisURL   string `yaml:"redis_url" mapstructure:"redis_url"`
	TTLSeconds int    `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// TTL returns the retention window as a time.Duration.
func (d DedupConfig) TTL() time.Duration {
	return time.Duration(d.TTLSeconds) * time.Second
}

// LoggingConfig captures logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
}

// ResourcesConfig names the collection pair backing each resource.
type ResourcesConfig struct {
	Events    CollectionsConfig `yaml:"events" mapstructure:"events"`
	Signups   CollectionsConfig `yaml:"signups" mapstructure:"signups"`
	EntStates CollectionsConfig `yaml:"ent_states" mapstructure:"ent_states"`
	Comments  CollectionsConfig `yaml:"comments" mapstructure:"comments"`
}

// CollectionsConfig pairs a details collection with its changelog.
type CollectionsConfig struct {
	Details   string `yaml:"details" mapstructure:"details"`
	Changelog string `yaml:"changelog" mapstructure:"changelog"`
}

// Load reads configuration from the provided path and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set all defaults
	v.SetDefault("server.port", 15550)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)

	v.SetDefault("broker.url", "nats://localhost:4222")
	v.SetDefault("broker.max_reconnects", -1) // Infinite reconnects
	v.SetDefault("broker.reconnect_wait_seconds", 2)
	v.SetDefault("broker.retry_interval_seconds", 2)
	v.SetDefault("broker.retry_max_attempts", 0) // Never give up
	v.SetDefault("broker.queue", "dionysus_inbox")
	v.SetDefault("broker.inbound_patterns", []string{
		"events.details.*",
		"events.signups.*",
		"events.comment.*",
		"ents.details.*",
	})
	v.SetDefault("broker.outbound_subject", "gateway")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "events")
	v.SetDefault("database.connect_timeout_seconds", 10)
	v.SetDefault("database.in_memory", false)

	v.SetDefault("dedup.enabled", false)
	v.SetDefault("dedup.redis_url", "redis://localhost:6379/0")
	v.SetDefault("dedup.ttl_seconds", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("resources.events.details", "details")
	v.SetDefault("resources.events.changelog", "changelog")
	v.SetDefault("resources.signups.details", "signups")
	v.SetDefault("resources.signups.changelog", "signups_changelog")
	v.SetDefault("resources.ent_states.details", "ent_states")
	v.SetDefault("resources.ent_states.changelog", "ent_states_changelog")
	v.SetDefault("resources.comments.details", "comments")
	v.SetDefault("resources.comments.changelog", "comments_changelog")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/uems/dionysus")
	}

	// Environment variables override
	v.SetEnvPrefix("DIONYSUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found; use defaults
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
