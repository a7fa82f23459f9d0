package config

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/MuseScoreTools/internal/logging"
)

const maxCollisionRetries = 100

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	if strings.Trim(c.Output.Indent, " \t") != "" {
		return fmt.Errorf("output.indent must contain only spaces or tabs, got %q", c.Output.Indent)
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.CollisionRetries < 1 || c.Split.CollisionRetries > maxCollisionRetries {
		return fmt.Errorf("split.collision_retries must be between 1 and %d, got %d", maxCollisionRetries, c.Split.CollisionRetries)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	return nil
}
