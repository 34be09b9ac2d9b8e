// Package config loads application configuration and initializes logging.
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
	Index     IndexConfig     `yaml:"index" mapstructure:"index"`
	Matcher   MatcherConfig   `yaml:"matcher" mapstructure:"matcher"`
	Crosswalk CrosswalkConfig `yaml:"crosswalk" mapstructure:"crosswalk"`
	Hazard    HazardConfig    `yaml:"hazard" mapstructure:"hazard"`
	Tiger     TigerConfig     `yaml:"tiger" mapstructure:"tiger"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local SQLite database used for the crosswalk
// cache, run records, and persisted reports.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// IndexConfig configures the canonical nation index sources.
type IndexConfig struct {
	NationsPath string `yaml:"nations_path" mapstructure:"nations_path"`
	AliasPath   string `yaml:"alias_path" mapstructure:"alias_path"`
	AliasSheet  string `yaml:"alias_sheet" mapstructure:"alias_sheet"`
}

// MatcherConfig configures the two-tier name matcher.
type MatcherConfig struct {
	// AcceptThreshold is the minimum fuzzy score (0-100) to accept a match.
	AcceptThreshold float64 `yaml:"accept_threshold" mapstructure:"accept_threshold"`
	// TieMargin is the score gap within which two top candidates are
	// considered tied and the match is reported ambiguous instead of
	// auto-resolved.
	TieMargin float64 `yaml:"tie_margin" mapstructure:"tie_margin"`
	// StatePenalty multiplies fuzzy confidence when the record's state code
	// contradicts the candidate nation's known states.
	StatePenalty float64 `yaml:"state_penalty" mapstructure:"state_penalty"`
}

// CrosswalkConfig configures the crosswalk build.
type CrosswalkConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	// WeightTolerance is the allowed deviation of a nation's weight sum
	// from 1.0 before clipping kicks in.
	WeightTolerance float64 `yaml:"weight_tolerance" mapstructure:"weight_tolerance"`
}

// HazardConfig configures hazard aggregation.
type HazardConfig struct {
	RegistryPath string `yaml:"registry_path" mapstructure:"registry_path"`
	OverridePath string `yaml:"override_path" mapstructure:"override_path"`
	TopN         int    `yaml:"top_n" mapstructure:"top_n"`
}

// TigerConfig configures TIGER/Line shapefile loading.
type TigerConfig struct {
	Year    int    `yaml:"year" mapstructure:"year"`
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// RatePerSec throttles downloads from census.gov.
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// OutputConfig configures run outputs.
type OutputConfig struct {
	ProfileDir string `yaml:"profile_dir" mapstructure:"profile_dir"`
	ReportDir  string `yaml:"report_dir" mapstructure:"report_dir"`
	// Workers bounds the parallel per-nation aggregation loop.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the read-only operator status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetConfigName("atlas")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "atlas.db")
	v.SetDefault("matcher.accept_threshold", 85.0)
	v.SetDefault("matcher.tie_margin", 2.0)
	v.SetDefault("matcher.state_penalty", 0.7)
	v.SetDefault("crosswalk.weight_tolerance", 0.001)
	v.SetDefault("hazard.top_n", 5)
	v.SetDefault("tiger.year", 2024)
	v.SetDefault("tiger.temp_dir", "/tmp/atlas-tiger")
	v.SetDefault("tiger.rate_per_sec", 2.0)
	v.SetDefault("output.profile_dir", "profiles")
	v.SetDefault("output.report_dir", "reports")
	v.SetDefault("output.workers", 4)
	v.SetDefault("server.port", 8080)
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
