// Package config holds the values that can be configured from an
// external YAML file: the empirically chosen timing constants and the
// session toggles. The timing values are defaults, not invariants; the
// shipped numbers match observed legacy behavior.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

const (
	defaultPollIntervalMS = 30
	defaultDoubleClickMS  = 500
	defaultEscWindowMS    = 500
	minPollIntervalMS     = 1
)

// Config is the external configuration. Interval fields are in
// milliseconds to keep the file format plain.
type Config struct {
	// PollInterval is the idle event-poll timeout per frame.
	PollInterval int `json:"PollInterval" yaml:"PollInterval"`
	// DoubleClickWindow is the span within which two presses at the
	// same position become a double click.
	DoubleClickWindow int `json:"DoubleClickWindow" yaml:"DoubleClickWindow"`
	// EscWindow is the span a lone ESC waits for a follow-up key.
	EscWindow int `json:"EscWindow" yaml:"EscWindow"`
	// Mouse controls whether mouse capture is requested at all.
	Mouse *bool `json:"Mouse" yaml:"Mouse"`
	// QuitKeys overrides the application-level quit shortcuts, using
	// the key names accepted by event.LookupKey.
	QuitKeys []string `json:"QuitKeys" yaml:"QuitKeys"`
}

// New returns a Config populated with defaults.
func New() *Config {
	c := &Config{}
	c.Init()
	return c
}

// Init fills in default values for anything unset.
func (c *Config) Init() {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollIntervalMS
	}
	if c.DoubleClickWindow <= 0 {
		c.DoubleClickWindow = defaultDoubleClickMS
	}
	if c.EscWindow <= 0 {
		c.EscWindow = defaultEscWindowMS
	}
}

// ReadFilename loads configuration from a YAML file, layering it over
// the defaults.
func (c *Config) ReadFilename(filename string) error {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", filename)
	}
	c.Init()
	return c.Validate()
}

// Validate rejects values the loop cannot run with.
func (c *Config) Validate() error {
	if c.PollInterval < minPollIntervalMS {
		return fmt.Errorf("invalid PollInterval %d: must be at least %dms", c.PollInterval, minPollIntervalMS)
	}
	return nil
}

func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

func (c *Config) DoubleClickDuration() time.Duration {
	return time.Duration(c.DoubleClickWindow) * time.Millisecond
}

func (c *Config) EscWindowDuration() time.Duration {
	return time.Duration(c.EscWindow) * time.Millisecond
}

// MouseEnabled reports the mouse-capture preference; the default is
// on.
func (c *Config) MouseEnabled() bool {
	return c.Mouse == nil || *c.Mouse
}
