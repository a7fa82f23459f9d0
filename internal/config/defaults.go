package config

import "strings"

// Default returns the configuration used when no file is present. Backups
// are on and every transform is off until enabled.
func Default() Config {
	return Config{
		Convert: Convert{
			Backup: true,
		},
		Split: Split{
			CollisionRetries: 1,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
}
