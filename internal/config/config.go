package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/loykin/statewatch/internal/logger"
)

// Config is the unified, validated configuration for a statewatch daemon.
type Config struct {
	Observer ObserverConfig
	Server   *ServerConfig
	Metrics  *MetricsConfig
	History  *HistoryConfig
	Log      *logger.Config
}

// FileConfig represents the top-level TOML structure.
type FileConfig struct {
	Observer *ObserverConfig `toml:"observer" mapstructure:"observer"`
	Server   *ServerConfig   `toml:"server" mapstructure:"server"`
	Metrics  *MetricsConfig  `toml:"metrics" mapstructure:"metrics"`
	History  *HistoryConfig  `toml:"history" mapstructure:"history"`
	Log      *LogConfig      `toml:"log" mapstructure:"log"`
}

type ObserverConfig struct {
	// MaxRecords bounds each subject's event log and state log.
	MaxRecords int `toml:"max_records" mapstructure:"max_records"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

type HistoryConfig struct {
	// DSN selects the sink backend: sqlite://, postgres://, clickhouse://,
	// opensearch:// or a bare file path (SQLite).
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type LogConfig struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	Path       string `toml:"path" mapstructure:"path"`
	Level      string `toml:"level" mapstructure:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// LoadConfig parses a TOML config file into a validated Config.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if fc.Observer != nil {
		if fc.Observer.MaxRecords < 0 {
			return nil, fmt.Errorf("observer.max_records must not be negative, got %d", fc.Observer.MaxRecords)
		}
		cfg.Observer = *fc.Observer
	}
	if fc.Server != nil {
		if fc.Server.Listen == "" {
			return nil, fmt.Errorf("server.listen is required when [server] is configured")
		}
		cfg.Server = fc.Server
	}
	if fc.Metrics != nil {
		cfg.Metrics = fc.Metrics
	}
	if fc.History != nil {
		if fc.History.DSN == "" {
			return nil, fmt.Errorf("history.dsn is required when [history] is configured")
		}
		cfg.History = fc.History
	}
	if fc.Log != nil {
		cfg.Log = &logger.Config{
			Dir:        fc.Log.Dir,
			Path:       fc.Log.Path,
			Level:      fc.Log.Level,
			MaxSizeMB:  fc.Log.MaxSizeMB,
			MaxBackups: fc.Log.MaxBackups,
			MaxAgeDays: fc.Log.MaxAgeDays,
			Compress:   fc.Log.Compress,
		}
	}
	return cfg, nil
}
