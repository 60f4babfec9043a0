// Package config implements global metrics configuration options.
package config

import "fmt"

const (
	// ModeNone disables metrics.
	ModeNone = "none"
	// ModePull serves metrics over HTTP while a command runs.
	ModePull = "pull"
	// ModePush pushes metrics to a Pushgateway once a command finishes.
	ModePush = "push"
)

// Config is the metrics configuration structure.
type Config struct {
	// Metrics mode (none, pull, push).
	Mode string `yaml:"mode"`
	// Metrics pull listen address or Pushgateway address.
	Address string `yaml:"address"`

	// Metrics push job name.
	JobName string `yaml:"job_name,omitempty"`
	// Metrics push grouping labels.
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Validate validates the configuration settings.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeNone:
	case ModePull:
		if len(c.Address) == 0 {
			return fmt.Errorf("missing address in pull mode")
		}
	case ModePush:
		if len(c.Address) == 0 {
			return fmt.Errorf("missing address in push mode")
		}
		if len(c.JobName) == 0 {
			return fmt.Errorf("missing job_name in push mode")
		}
		if len(c.Labels) == 0 {
			return fmt.Errorf("missing labels in push mode")
		}
	default:
		return fmt.Errorf("unknown metrics mode: %s", c.Mode)
	}

	return nil
}

// DefaultConfig returns the default configuration settings.
func DefaultConfig() Config {
	return Config{
		Mode:    ModeNone,
		Address: "127.0.0.1:3000",
		JobName: "prngkit",
		Labels:  map[string]string{},
	}
}
