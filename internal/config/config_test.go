package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	yaml := `
site:
  base_url: https://spimex.com
  start_path: /markets/oil_products/trades/results/
database:
  host: localhost
  port: 5432
  name: test_db
  user: testuser
  password: testpass
redis:
  host: localhost
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Site.BaseURL != "https://spimex.com" {
		t.Errorf("Site.BaseURL = %q, want %q", cfg.Site.BaseURL, "https://spimex.com")
	}
	if cfg.Site.StartPath != "/markets/oil_products/trades/results/" {
		t.Errorf("Site.StartPath = %q, want %q", cfg.Site.StartPath, "/markets/oil_products/trades/results/")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  host: localhost
  name: test_db
  user: testuser
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	yaml := `
database:
  host: localhost
  pasword: oops
`
	path := writeTempFile(t, yaml)

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config with a misspelled key")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Site.BaseURL != DefaultBaseURL {
		t.Errorf("Site.BaseURL = %q, want default %q", cfg.Site.BaseURL, DefaultBaseURL)
	}
	if cfg.Site.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("Site.RequestTimeout = %v, want default %v", cfg.Site.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database.MaxConns = %d, want default %d", cfg.Database.MaxConns, DefaultMaxConns)
	}
	if cfg.Scraper.CutoffYear != DefaultCutoffYear {
		t.Errorf("Scraper.CutoffYear = %d, want default %d", cfg.Scraper.CutoffYear, DefaultCutoffYear)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Cache.TTL = %v, want default %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
}

func TestValidate(t *testing.T) {
	validSite := SiteConfig{
		BaseURL:   DefaultBaseURL,
		StartPath: DefaultStartPath,
		MaxConns:  100,
	}
	validDB := DBConfig{
		Host: "localhost", Name: "db", User: "user", Password: "pass",
		MaxConns: 10, MinConns: 2,
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing base url",
			cfg:     Config{},
			wantErr: "site.base_url is required",
		},
		{
			name: "missing database host",
			cfg: Config{
				Site: validSite,
			},
			wantErr: "database.host is required",
		},
		{
			name: "missing database password",
			cfg: Config{
				Site:     validSite,
				Database: DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 10},
			},
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			cfg: Config{
				Site: validSite,
				Database: DBConfig{
					Host: "localhost", Name: "db", User: "user", Password: "pass",
					MaxConns: 5, MinConns: 10,
				},
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "bad reset time",
			cfg: Config{
				Site:     validSite,
				Database: validDB,
				Scraper:  ScraperConfig{CutoffYear: 2022},
				Cache:    CacheConfig{ResetAt: "25:99"},
				Server:   ServerConfig{Port: 8080},
			},
			wantErr: `cache.reset_at must be HH:MM, got "25:99"`,
		},
		{
			name: "valid config",
			cfg: Config{
				Site:     validSite,
				Database: validDB,
				Scraper:  ScraperConfig{CutoffYear: 2022},
				Cache:    CacheConfig{ResetAt: "14:11"},
				Server:   ServerConfig{Port: 8080},
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
