package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ExecutorGraph     = "graph"
	ExecutorSimulator = "simulator"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Executor string         `mapstructure:"executor"`
	Debug    bool           `mapstructure:"debug"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DataConfig represents simulator data configuration
type DataConfig struct {
	RawDataFolder string     `mapstructure:"raw_data_folder"`
	ValueRange    ValueRange `mapstructure:"value_range"`
	// SimulatorToken, when set, is the only access token the simulator accepts.
	SimulatorToken string `mapstructure:"simulator_token"`
}

// ValueRange represents the range for random value generation
type ValueRange struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// GraphConfig points at the remote insights API
type GraphConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Database: DatabaseConfig{
			Path: "insightquery.db",
		},
		Data: DataConfig{
			RawDataFolder: "raw_data",
			ValueRange: ValueRange{
				Min: 1.0,
				Max: 10000.0,
			},
		},
		Graph: GraphConfig{
			BaseURL: "https://api.facebook.com",
			Timeout: 30 * time.Second,
		},
		Executor: ExecutorSimulator,
	}
}

// Load reads configuration from an optional file and environment variables.
// Environment variables use the prefix "INSIGHTQUERY" with dots replaced by
// underscores, so "graph.base_url" becomes "INSIGHTQUERY_GRAPH_BASE_URL".
// An empty configPath looks for config.{yaml,json,toml} in the working directory.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("INSIGHTQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	if c.Data.ValueRange.Min >= c.Data.ValueRange.Max {
		return fmt.Errorf("invalid value range: min (%f) must be less than max (%f)", c.Data.ValueRange.Min, c.Data.ValueRange.Max)
	}
	switch c.Executor {
	case ExecutorGraph:
		if c.Graph.BaseURL == "" {
			return fmt.Errorf("graph.base_url is required for the graph executor")
		}
	case ExecutorSimulator:
	default:
		return fmt.Errorf("unknown executor %q (expected %q or %q)", c.Executor, ExecutorGraph, ExecutorSimulator)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string{}, parts...), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
