package config

import "time"

// Config is the root configuration for the spimex-data service.
type Config struct {
	Site     SiteConfig    `yaml:"site"`
	Database DBConfig      `yaml:"database"`
	Redis    RedisConfig   `yaml:"redis"`
	Scraper  ScraperConfig `yaml:"scraper"`
	Cache    CacheConfig   `yaml:"cache"`
	Server   ServerConfig  `yaml:"server"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// SiteConfig holds settings for the exchange website.
type SiteConfig struct {
	BaseURL        string        `yaml:"base_url"`
	StartPath      string        `yaml:"start_path"`
	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // overall per-request
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxConns       int           `yaml:"max_conns"` // shared connection pool size
}

// DBConfig holds the PostgreSQL connection for trading results.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds the cache store connection.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	CacheDB  int    `yaml:"cache_db"`
}

// ScraperConfig holds scrape-run settings.
type ScraperConfig struct {
	ScratchDir         string `yaml:"scratch_dir"`
	CutoffYear         int    `yaml:"cutoff_year"` // bulletins from this year and earlier are never ingested
	ExtractConcurrency int    `yaml:"extract_concurrency"`
}

// CacheConfig holds response-cache settings.
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	ResetAt string        `yaml:"reset_at"` // daily flush time, "HH:MM" UTC; empty disables the job
}

// ServerConfig holds the HTTP API server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}
