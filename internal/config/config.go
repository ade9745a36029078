package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/colstats/internal/stats"
	"github.com/KaramelBytes/colstats/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. COLSTATS_JOBS.
const EnvPrefix = "COLSTATS"

// Global configuration structure.
type Global struct {
	RoundPlaces    int    `mapstructure:"round_places" yaml:"round_places" json:"round_places"`
	Jobs           int    `mapstructure:"jobs" yaml:"jobs" json:"jobs"`
	DatesWhitelist string `mapstructure:"dates_whitelist" yaml:"dates_whitelist" json:"dates_whitelist"`
	InferDates     bool   `mapstructure:"infer_dates" yaml:"infer_dates" json:"infer_dates"`
	PreferDMY      bool   `mapstructure:"prefer_dmy" yaml:"prefer_dmy" json:"prefer_dmy"`
	IncludeNulls   bool   `mapstructure:"include_nulls" yaml:"include_nulls" json:"include_nulls"`
	OutputFormat   string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`

	// Logging
	LogLevel    string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogEncoding string `mapstructure:"log_encoding" yaml:"log_encoding" json:"log_encoding"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		RoundPlaces:    4,
		DatesWhitelist: stats.DefaultDatesWhitelist,
		OutputFormat:   "csv",
		LogLevel:       "warn",
		LogEncoding:    "console",
	}
}

// Dir returns ~/.colstats.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".colstats"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.colstats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied on top
// by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("round_places", d.RoundPlaces)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("dates_whitelist", d.DatesWhitelist)
	v.SetDefault("infer_dates", d.InferDates)
	v.SetDefault("prefer_dmy", d.PreferDMY)
	v.SetDefault("include_nulls", d.IncludeNulls)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_encoding", d.LogEncoding)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RoundPlaces < 0 {
		return nil, fmt.Errorf("invalid round_places: %d", c.RoundPlaces)
	}
	return &c, nil
}

// Options maps the configuration onto engine options.
func (c *Global) Options() stats.Options {
	o := stats.DefaultOptions()
	o.Round = uint32(c.RoundPlaces)
	o.Jobs = c.Jobs
	o.InferDates = c.InferDates
	o.PreferDMY = c.PreferDMY
	o.IncludeNulls = c.IncludeNulls
	if c.DatesWhitelist != "" {
		o.DatesWhitelist = c.DatesWhitelist
	}
	return o
}
