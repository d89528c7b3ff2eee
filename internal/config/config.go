// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

// Configuration holds all configuration for mortgage-planner.
type Configuration struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Upstream UpstreamConfig `yaml:"upstream,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ServerConfig holds the planner API listen parameters.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize int64  `yaml:"maxBodySize,omitempty"`
}

// UpstreamConfig points at the external simulation API.
type UpstreamConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// StorageConfig holds snapshot persistence parameters.
type StorageConfig struct {
	SnapshotPath string `yaml:"snapshotPath,omitempty"`
}

// CacheConfig holds simulation response cache parameters. An empty Redis
// address selects the in-memory cache.
type CacheConfig struct {
	RedisAddress string `yaml:"redisAddress,omitempty"`
	TTLSeconds   int    `yaml:"ttlSeconds,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	if err := configuration.validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// UpstreamTimeout returns the configured upstream request timeout.
func (c *Configuration) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// CacheTTL returns the configured simulation cache lifetime.
func (c *Configuration) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Configuration) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if c.Server.MaxBodySize <= 0 {
		c.Server.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = constants.DefaultUpstreamTimeoutSeconds
	}
	if c.Storage.SnapshotPath == "" {
		c.Storage.SnapshotPath = constants.DefaultSnapshotFile
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = constants.DefaultCacheTTLSeconds
	}
}

func (c *Configuration) validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.baseUrl is required")
	}
	return nil
}

// WriteExample writes a commented starter configuration to the given path.
func WriteExample(path string) error {
	example := Configuration{
		Server: ServerConfig{
			Address:     constants.DefaultServerAddress,
			MaxBodySize: constants.DefaultMaxBodySizeBytes,
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:9000",
			TimeoutSeconds: constants.DefaultUpstreamTimeoutSeconds,
		},
		Storage: StorageConfig{SnapshotPath: constants.DefaultSnapshotFile},
		Cache:   CacheConfig{TTLSeconds: constants.DefaultCacheTTLSeconds},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to encode example config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
