// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Routing   RoutingConfig   `yaml:"routing" mapstructure:"routing"`
	POISource POISourceConfig `yaml:"poisource" mapstructure:"poisource"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EngineConfig holds planner tunables.
type EngineConfig struct {
	MaxRepairAttempts  int     `yaml:"max_repair_attempts" mapstructure:"max_repair_attempts"`
	ClusterThresholdKm float64 `yaml:"cluster_threshold_km" mapstructure:"cluster_threshold_km"`
	MaxClustersPerDay  int     `yaml:"max_clusters_per_day" mapstructure:"max_clusters_per_day"`
	DayEndHour         int     `yaml:"day_end_hour" mapstructure:"day_end_hour"`
}

// RoutingConfig selects and configures the travel-time provider.
type RoutingConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"` // fixture or real
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// POISourceConfig configures candidate POI retrieval.
type POISourceConfig struct {
	FixtureDir string `yaml:"fixture_dir" mapstructure:"fixture_dir"`
}

// BatchConfig configures concurrent batch planning.
type BatchConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int      `yaml:"port" mapstructure:"port"`
	RateRPS   float64  `yaml:"rate_rps" mapstructure:"rate_rps"`
	RateBurst int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORS      []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ExportConfig configures spreadsheet export.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRIPPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "trip-planner.db")
	v.SetDefault("engine.max_repair_attempts", 3)
	v.SetDefault("engine.cluster_threshold_km", 4.5)
	v.SetDefault("engine.max_clusters_per_day", 2)
	v.SetDefault("engine.day_end_hour", 22)
	v.SetDefault("routing.provider", "fixture")
	v.SetDefault("routing.timeout_secs", 10)
	v.SetDefault("poisource.fixture_dir", "")
	v.SetDefault("batch.max_concurrent_runs", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_rps", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration can support the requested mode.
// Field checks are collected so the operator sees every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Engine.MaxRepairAttempts >= 1 && c.Engine.MaxRepairAttempts <= 10,
		"engine.max_repair_attempts must be between 1 and 10")
	check(c.Engine.ClusterThresholdKm > 0, "engine.cluster_threshold_km must be > 0")
	check(c.Engine.MaxClustersPerDay >= 1, "engine.max_clusters_per_day must be >= 1")
	check(c.Routing.Provider == "fixture" || c.Routing.Provider == "real",
		"routing.provider must be fixture or real")
	if c.Routing.Provider == "real" {
		check(c.Routing.BaseURL != "", "routing.base_url is required for the real provider")
	}

	switch mode {
	case "plan", "batch", "export", "runs":
		check(c.Store.DatabaseURL != "", "store.database_url is required")
	case "serve":
		check(c.Store.DatabaseURL != "", "store.database_url is required")
		check(c.Server.Port > 0, "server.port must be > 0")
		check(c.Batch.MaxConcurrentRuns >= 1 && c.Batch.MaxConcurrentRuns <= 32,
			"batch.max_concurrent_runs must be between 1 and 32")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
