// Package config resolves steadybench settings from flags, environment and
// an optional YAML file through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"steadybench/internal/runner"
	"steadybench/internal/workload"
)

const (
	KeyLogDir      = "log_dir"
	KeyLogFile     = "log_file"
	KeyLogLevel    = "log_level"
	KeyDocument    = "document"
	KeyScratch     = "scratch"
	KeyOnMalformed = "on_malformed"
	KeyHistory     = "history"
	KeyNoHistory   = "no_history"
	KeyMetricsFile = "metrics_file"
	KeySeed        = "seed"
	KeyVerbose     = "verbose"

	EnvPrefix = "STEADYBENCH"
)

// Settings is the resolved configuration of one command.
type Settings struct {
	LogDir      string `mapstructure:"log_dir"`
	LogFile     string `mapstructure:"log_file"`
	LogLevel    string `mapstructure:"log_level"`
	Document    string `mapstructure:"document"`
	Scratch     string `mapstructure:"scratch"`
	OnMalformed string `mapstructure:"on_malformed"`
	History     string `mapstructure:"history"`
	NoHistory   bool   `mapstructure:"no_history"`
	MetricsFile string `mapstructure:"metrics_file"`
	Seed        int64  `mapstructure:"seed"`
	Verbose     bool   `mapstructure:"verbose"`
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogDir, "")
	v.SetDefault(KeyLogFile, "benchmark_{{goVersion}}.log")
	v.SetDefault(KeyLogLevel, "debug")
	v.SetDefault(KeyDocument, workload.DefaultDocument)
	v.SetDefault(KeyScratch, workload.DefaultScratchFile)
	v.SetDefault(KeyOnMalformed, string(runner.AbortOnMalformed))
	v.SetDefault(KeyHistory, DefaultHistoryPath())
	v.SetDefault(KeyNoHistory, false)
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyVerbose, false)
}

// DefaultHistoryPath is ~/.steadybench/history.db, or a relative path when
// the home directory is unknown.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".steadybench", "history.db")
	}
	return filepath.Join(home, ".steadybench", "history.db")
}

// Load unmarshals v, renders the name patterns and validates the result.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}

	names := NewTemplateEngine()
	var err error
	if s.LogFile, err = names.Render(s.LogFile); err != nil {
		return s, err
	}
	if s.Scratch, err = names.Render(s.Scratch); err != nil {
		return s, err
	}

	if _, err := runner.ParseMalformedPolicy(s.OnMalformed); err != nil {
		return s, err
	}
	if s.LogFile == "" {
		return s, fmt.Errorf("%s must not be empty", KeyLogFile)
	}
	return s, nil
}

// MalformedPolicy returns the validated malformed-input policy.
func (s Settings) MalformedPolicy() runner.MalformedPolicy {
	p, err := runner.ParseMalformedPolicy(s.OnMalformed)
	if err != nil {
		return runner.AbortOnMalformed
	}
	return p
}

// WorkloadOptions maps settings onto catalog options.
func (s Settings) WorkloadOptions() workload.Options {
	return workload.Options{
		Document: s.Document,
		Scratch:  s.Scratch,
		Seed:     s.Seed,
	}
}
