// Package config implements global configuration options.
package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/distribution"
	"github.com/simlab/prngkit/generator/api"
	metrics "github.com/simlab/prngkit/metrics/config"
	"github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

// GlobalConfig holds the global configuration options.
var GlobalConfig Config

// LogConfig is the logging configuration structure.
type LogConfig struct {
	// Log file.
	File string `yaml:"file,omitempty"`
	// Log format (logfmt, json).
	Format string `yaml:"format,omitempty"`
	// Log level (debug, info, warn, error) per module, "default" being the
	// level of every other module.
	Level map[string]string `yaml:"level,omitempty"`
}

// Validate validates the configuration settings.
func (c *LogConfig) Validate() error {
	var f logging.Format
	if err := f.Set(c.Format); err != nil {
		return err
	}
	for module, v := range c.Level {
		var l logging.Level
		if err := l.Set(v); err != nil {
			return fmt.Errorf("module '%s': %w", module, err)
		}
	}
	return nil
}

// Config is the top-level configuration structure. Keys mirror the
// command line flags of the same name.
type Config struct {
	Log     LogConfig      `yaml:"log,omitempty"`
	Metrics metrics.Config `yaml:"metrics,omitempty"`

	// Method is the generation method of single-source commands.
	Method api.Method `yaml:"method"`
	// Methods are the methods compared side by side.
	Methods []api.Method `yaml:"methods,omitempty"`
	// Seed is the seed of single-source commands. If nil, the current
	// time is used.
	Seed *uint64 `yaml:"seed,omitempty"`
	// Seeds are the seeds compared side by side.
	Seeds []uint64 `yaml:"seeds,omitempty"`
	// Count is the number of values to generate.
	Count int `yaml:"count"`
	// Head is the number of leading values kept in reports.
	Head int `yaml:"head"`
	// LCG holds the linear congruential generator parameters.
	LCG api.LCGConfig `yaml:"lcg"`

	// Lag is the autocorrelation lag.
	Lag int `yaml:"lag"`
	// Tests are the statistical tests to run, all if empty.
	Tests []string `yaml:"tests,omitempty"`

	// Dist is the distribution of the distribution command.
	Dist        distribution.Kind              `yaml:"dist"`
	Uniform     distribution.UniformConfig     `yaml:"uniform"`
	Exponential distribution.ExponentialConfig `yaml:"exponential"`
	Normal      distribution.NormalConfig      `yaml:"normal"`
	Pascal      distribution.PascalConfig      `yaml:"pascal"`
	Binomial    distribution.BinomialConfig    `yaml:"binomial"`
	Poisson     distribution.PoissonConfig     `yaml:"poisson"`
	Empirical   distribution.EmpiricalConfig   `yaml:"empirical"`

	// Format is the output format.
	Format report.Format `yaml:"format"`
	// Output is the output file, standard output if empty.
	Output string `yaml:"output,omitempty"`
	// Compress enables snappy framing of the output.
	Compress bool `yaml:"compress,omitempty"`
}

// Generator returns the generator configuration for the given method.
func (c *Config) Generator(m api.Method) api.Config {
	return api.Config{
		Method: m,
		Seed:   c.Seed,
		LCG:    c.LCG,
	}
}

// Distribution returns the distribution configuration.
func (c *Config) Distribution() distribution.Config {
	return distribution.Config{
		Kind:        c.Dist,
		Uniform:     c.Uniform,
		Exponential: c.Exponential,
		Normal:      c.Normal,
		Pascal:      c.Pascal,
		Binomial:    c.Binomial,
		Poisson:     c.Poisson,
		Empirical:   c.Empirical,
	}
}

// Validate validates the configuration settings.
func (c *Config) Validate() error {
	var err error

	if err = c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err = c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	for _, m := range append([]api.Method{c.Method}, c.Methods...) {
		cfg := c.Generator(m)
		if err = cfg.Validate(); err != nil {
			return fmt.Errorf("generator: %w", err)
		}
	}
	if c.Count <= 0 {
		return fmt.Errorf("count: %w", api.ErrInvalidCount)
	}
	if c.Head < 0 {
		return fmt.Errorf("head: must be non-negative")
	}

	if c.Lag < 0 {
		return fmt.Errorf("lag: %w", stattest.ErrInvalidLag)
	}
	if _, err = stattest.Resolve(c.Tests, stattest.Options{Lag: c.Lag}); err != nil {
		return fmt.Errorf("tests: %w", err)
	}

	dist := c.Distribution()
	if err = dist.Validate(); err != nil {
		return fmt.Errorf("distribution: %w", err)
	}

	if _, err = c.Format.MarshalText(); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration settings.
func DefaultConfig() Config {
	dist := distribution.DefaultConfig(distribution.KindUniform)
	return Config{
		Log: LogConfig{
			File:   "",
			Format: "logfmt",
			Level: map[string]string{
				"default": "warn",
			},
		},
		Metrics:     metrics.DefaultConfig(),
		Method:      api.MethodMersenneTwister,
		Methods:     api.Methods(),
		Count:       1000,
		Head:        10,
		LCG:         api.DefaultLCGConfig(),
		Lag:         stattest.DefaultLag,
		Dist:        dist.Kind,
		Uniform:     dist.Uniform,
		Exponential: dist.Exponential,
		Normal:      dist.Normal,
		Pascal:      dist.Pascal,
		Binomial:    dist.Binomial,
		Poisson:     dist.Poisson,
		Empirical:   dist.Empirical,
		Format:      report.FormatText,
	}
}

// Load decodes and validates a configuration document on top of the
// default configuration. Unknown fields are an error.
func Load(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// InitConfig initializes the global configuration from the given file.
func InitConfig(cfgFile string) error {
	// Read the specified config file and substitute environment variables.
	data, err := envsubst.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("unable to read config file '%s': %w", cfgFile, err)
	}

	cfg, err := Load(data)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", cfgFile, err)
	}
	GlobalConfig = cfg

	return nil
}

func init() {
	GlobalConfig = DefaultConfig()
}
