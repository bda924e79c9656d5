package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return errors.New("site.base_url is required")
	}
	if c.Site.StartPath == "" {
		return errors.New("site.start_path is required")
	}
	if c.Site.MaxConns < 1 {
		return errors.New("site.max_conns must be >= 1")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Scraper.CutoffYear < 1 {
		return errors.New("scraper.cutoff_year must be a calendar year")
	}
	if c.Scraper.ExtractConcurrency < 0 {
		return errors.New("scraper.extract_concurrency must be >= 0")
	}

	if c.Cache.ResetAt != "" {
		if _, err := time.Parse("15:04", c.Cache.ResetAt); err != nil {
			return fmt.Errorf("cache.reset_at must be HH:MM, got %q", c.Cache.ResetAt)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
