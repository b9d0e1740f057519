package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a test run. Values are layered: defaults, then the YAML config file,
// then environment variables (including any loaded from env files), then command-line flags, which
// the caller applies on top.
type Config struct {
	Run       []string
	Skip      []string
	Debug     bool
	DebugAll  bool
	Parallel  ldvalue.OptionalInt
	FailLimit ldvalue.OptionalInt
	Style     string
	ReportURL string
}

type fileConfig struct {
	Run       []string `yaml:"run"`
	Skip      []string `yaml:"skip"`
	Debug     *bool    `yaml:"debug"`
	DebugAll  *bool    `yaml:"debugAll"`
	Parallel  *int     `yaml:"parallel"`
	FailLimit *int     `yaml:"failLimit"`
	Style     string   `yaml:"style"`
	ReportURL string   `yaml:"reportUrl"`
}

// For mocking in tests
var lookupEnv = os.LookupEnv

func Default() Config {
	return Config{Style: DefaultStyle}
}

// Load builds a Config from the defaults, the YAML file at path, and the environment. If path is
// empty, DefaultConfigFile is used when it exists. The env files are loaded into the process
// environment first, without replacing variables that are already set; if none are given,
// DefaultEnvFile is loaded when it exists.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		overlay, err := loadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		cfg = merge(cfg, overlay)
	}

	if len(envFiles) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			envFiles = []string{DefaultEnvFile}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, fmt.Errorf("error loading env files %s: %w", strings.Join(envFiles, ", "), err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, err
	}
	return fc, nil
}

func merge(base Config, overlay fileConfig) Config {
	merged := base
	merged.Run = append(merged.Run, overlay.Run...)
	merged.Skip = append(merged.Skip, overlay.Skip...)
	if overlay.Debug != nil {
		merged.Debug = *overlay.Debug
	}
	if overlay.DebugAll != nil {
		merged.DebugAll = *overlay.DebugAll
	}
	if overlay.Parallel != nil {
		merged.Parallel = ldvalue.NewOptionalIntFromPointer(overlay.Parallel)
	}
	if overlay.FailLimit != nil {
		merged.FailLimit = ldvalue.NewOptionalIntFromPointer(overlay.FailLimit)
	}
	if overlay.Style != "" {
		merged.Style = overlay.Style
	}
	if overlay.ReportURL != "" {
		merged.ReportURL = overlay.ReportURL
	}
	return merged
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv(EnvRun); ok && v != "" {
		cfg.Run = append(cfg.Run, splitList(v)...)
	}
	if v, ok := lookupEnv(EnvSkip); ok && v != "" {
		cfg.Skip = append(cfg.Skip, splitList(v)...)
	}
	for name, target := range map[string]*bool{EnvDebug: &cfg.Debug, EnvDebugAll: &cfg.DebugAll} {
		if v, ok := lookupEnv(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*target = b
		}
	}
	for name, target := range map[string]*ldvalue.OptionalInt{EnvParallel: &cfg.Parallel, EnvFailLimit: &cfg.FailLimit} {
		if v, ok := lookupEnv(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*target = ldvalue.NewOptionalInt(n)
		}
	}
	if v, ok := lookupEnv(EnvStyle); ok && v != "" {
		cfg.Style = v
	}
	if v, ok := lookupEnv(EnvReportURL); ok && v != "" {
		cfg.ReportURL = v
	}
	return nil
}

// splitList splits a comma-separated environment value, dropping empty items.
func splitList(s string) []string {
	var ret []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			ret = append(ret, item)
		}
	}
	return ret
}

// Parallelism returns the configured parallelism or DefaultParallelism.
func (c Config) Parallelism() int {
	return c.Parallel.OrElse(DefaultParallelism)
}

// FailLimitOrDefault returns the configured fail limit or DefaultFailLimit.
func (c Config) FailLimitOrDefault() int {
	return c.FailLimit.OrElse(DefaultFailLimit)
}

func (c Config) Validate() error {
	var errs []error
	if c.Parallelism() < 1 {
		errs = append(errs, fmt.Errorf("parallel must be at least 1, got %d", c.Parallelism()))
	}
	if c.FailLimitOrDefault() < 0 {
		errs = append(errs, fmt.Errorf("fail limit cannot be negative, got %d", c.FailLimitOrDefault()))
	}
	known := false
	for _, s := range Styles {
		known = known || s == c.Style
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown style %q (expected one of %s)", c.Style, strings.Join(Styles, ", ")))
	}
	return errors.Join(errs...)
}
