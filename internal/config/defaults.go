package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL        = "https://spimex.com"
	DefaultStartPath      = "/markets/oil_products/trades/results/"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.93 Safari/537.36"
	DefaultRequestTimeout = 600 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultSiteMaxConns   = 100

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultRedisPort = 6379

	DefaultScratchDir         = "downloads"
	DefaultCutoffYear         = 2022
	DefaultExtractConcurrency = 0 // 0 = runtime.NumCPU() at run time

	DefaultCacheTTL = 24 * time.Hour

	DefaultServerPort  = 8080
	DefaultMetricsPath = "/metrics"
)

func (c *Config) applyDefaults() {
	// Site defaults
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = DefaultBaseURL
	}
	if c.Site.StartPath == "" {
		c.Site.StartPath = DefaultStartPath
	}
	if c.Site.UserAgent == "" {
		c.Site.UserAgent = DefaultUserAgent
	}
	if c.Site.RequestTimeout == 0 {
		c.Site.RequestTimeout = DefaultRequestTimeout
	}
	if c.Site.ConnectTimeout == 0 {
		c.Site.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Site.MaxConns == 0 {
		c.Site.MaxConns = DefaultSiteMaxConns
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Redis defaults
	if c.Redis.Port == 0 {
		c.Redis.Port = DefaultRedisPort
	}

	// Scraper defaults
	if c.Scraper.ScratchDir == "" {
		c.Scraper.ScratchDir = DefaultScratchDir
	}
	if c.Scraper.CutoffYear == 0 {
		c.Scraper.CutoffYear = DefaultCutoffYear
	}

	// Cache defaults
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
