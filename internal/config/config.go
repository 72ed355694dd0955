// Package config assembles run settings from defaults, an optional YAML
// file, TEXSHRINK_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"texshrink/internal/processor"
)

const (
	DefaultMaxDimension = 2048
	DefaultMinDimension = 128
	DefaultQuality      = 85

	minQuality = 1
	maxQuality = 95

	envPrefix = "texshrink"
)

type Config struct {
	InputDir      string  `yaml:"input_dir" split_words:"true"`
	OutputDir     string  `yaml:"output_dir" split_words:"true"`
	Overwrite     bool    `yaml:"overwrite" split_words:"true"`
	MaxDimension  int     `yaml:"max_dim" split_words:"true"`
	MaxMegapixels float64 `yaml:"max_megapixels" split_words:"true"`
	MinDimension  int     `yaml:"min_dim" split_words:"true"`
	Quality       int     `yaml:"jpeg_quality" split_words:"true"`
	DryRun        bool    `yaml:"dry_run" split_words:"true"`
	Verbose       bool    `yaml:"verbose" split_words:"true"`
	Workers       int     `yaml:"workers" split_words:"true"`
}

func Default() Config {
	return Config{
		MaxDimension: DefaultMaxDimension,
		MinDimension: DefaultMinDimension,
		Quality:      DefaultQuality,
		Workers:      runtime.NumCPU(),
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path
// is not empty) and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, processor.ConfigError("read config %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, processor.ConfigError("parse config %s: %v", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, processor.ConfigError("environment: %v", err)
	}

	return cfg, nil
}

// ClampQuality keeps q within the range the JPEG encoder is given.
func ClampQuality(q int) int {
	return max(minQuality, min(maxQuality, q))
}

// Policy resolves the output policy. Overwrite is used when asked for or
// when no output directory is set; ignored reports that an output
// directory was configured but overwrite won.
func (c Config) Policy() (policy processor.OutputPolicy, ignored bool) {
	if c.Overwrite || c.OutputDir == "" {
		return processor.Overwrite(), c.OutputDir != ""
	}
	return processor.Mirror(c.OutputDir), false
}

func (c Config) Constraints() processor.Constraints {
	return processor.Constraints{
		MaxDimension:  c.MaxDimension,
		MaxMegapixels: c.MaxMegapixels,
		MinDimension:  c.MinDimension,
		Quality:       ClampQuality(c.Quality),
	}
}

// Validate checks everything that must hold before any file is touched.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return processor.ConfigError("input directory is required")
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return processor.ConfigError("input dir does not exist or is not a directory: %s", c.InputDir)
		}
		return processor.ConfigError("input dir %s: %v", c.InputDir, err)
	}
	if !info.IsDir() {
		return processor.ConfigError("input dir does not exist or is not a directory: %s", c.InputDir)
	}
	if c.Workers < 0 {
		return processor.ConfigError("workers must not be negative, got %d", c.Workers)
	}
	if err := c.Constraints().Validate(); err != nil {
		return err
	}
	return nil
}

// Options converts the configuration into processor options.
func (c Config) Options() processor.Options {
	policy, _ := c.Policy()
	return processor.Options{
		InputRoot:   c.InputDir,
		Policy:      policy,
		Constraints: c.Constraints(),
		DryRun:      c.DryRun,
		Workers:     c.Workers,
	}
}

func (c Config) String() string {
	policy, _ := c.Policy()
	return fmt.Sprintf("input=%s policy=%s max_dim=%d max_mp=%g min_dim=%d quality=%d dry_run=%t",
		c.InputDir, policy, c.MaxDimension, c.MaxMegapixels, c.MinDimension, ClampQuality(c.Quality), c.DryRun)
}
