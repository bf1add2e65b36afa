package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DefaultThreshold  float64 `mapstructure:"default_threshold" yaml:"default_threshold"`
	DefaultTargetType string  `mapstructure:"default_target_type" yaml:"default_target_type"`
	OutputFormat      string  `mapstructure:"output_format" yaml:"output_format"`
	Delimiter         string  `mapstructure:"delimiter" yaml:"delimiter"`
	MaxRows           int     `mapstructure:"max_rows" yaml:"max_rows"`
	ColorOutput       bool    `mapstructure:"color_output" yaml:"color_output"`

	// Chart presentation
	ChartWidth      int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight     int    `mapstructure:"chart_height" yaml:"chart_height"`
	BalancedColor   string `mapstructure:"balanced_color" yaml:"balanced_color"`
	ImbalancedColor string `mapstructure:"imbalanced_color" yaml:"imbalanced_color"`
	ThresholdColor  string `mapstructure:"threshold_color" yaml:"threshold_color"`
}

// Dir returns the configuration directory, ~/.summarease.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".summarease"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.summarease/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; CLI flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SUMMAREASE")
	v.AutomaticEnv()

	v.SetDefault("default_threshold", 0.2)
	v.SetDefault("default_target_type", "categorical")
	v.SetDefault("output_format", "table")
	v.SetDefault("delimiter", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("color_output", true)
	v.SetDefault("chart_width", 600)
	v.SetDefault("chart_height", 400)
	v.SetDefault("balanced_color", "#4F46E5")
	v.SetDefault("imbalanced_color", "#EF4444")
	v.SetDefault("threshold_color", "#F59E0B")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DefaultThreshold < 0 || c.DefaultThreshold > 1 {
		return nil, fmt.Errorf("default_threshold %v is outside [0, 1]", c.DefaultThreshold)
	}
	return &c, nil
}
