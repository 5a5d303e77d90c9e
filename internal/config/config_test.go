package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STASH_DB_DRIVER", "sqlite3")
	t.Setenv("STASH_DB_DSN", "file:stash.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.OAuthTimeout != 5*time.Second {
		t.Errorf("OAuthTimeout = %v, want 5s", cfg.OAuthTimeout)
	}
	if cfg.DB.Driver != "sqlite3" || cfg.DB.DSN != "file:stash.db" {
		t.Errorf("DB = %+v", cfg.DB)
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("STASH_DB_DRIVER", "")
	t.Setenv("STASH_DB_DSN", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "STASH_DB_DRIVER") {
		t.Errorf("missing driver: err = %v", err)
	}

	t.Setenv("STASH_DB_DRIVER", "postgres")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "STASH_DB_DSN") {
		t.Errorf("missing dsn: err = %v", err)
	}
}

func TestLoadGoogleEnvAliases(t *testing.T) {
	t.Setenv("STASH_DB_DRIVER", "sqlite3")
	t.Setenv("STASH_DB_DSN", "file:stash.db")
	t.Setenv("GOOGLE_CLIENT_ID", "client-from-legacy-env")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret-from-legacy-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Google.ClientID != "client-from-legacy-env" {
		t.Errorf("ClientID = %q", cfg.Google.ClientID)
	}
	if cfg.Google.ClientSecret != "secret-from-legacy-env" {
		t.Errorf("ClientSecret = %q", cfg.Google.ClientSecret)
	}
}

func TestLoadBaseURLTrimsSlash(t *testing.T) {
	t.Setenv("STASH_DB_DRIVER", "sqlite3")
	t.Setenv("STASH_DB_DSN", "file:stash.db")
	t.Setenv("STASH_SERVER_BASE_URL", "https://stash.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "https://stash.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.Server.BaseURL)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("STASH_DB_DRIVER", "sqlite3")
	t.Setenv("STASH_DB_DSN", "file:stash.db")
	t.Setenv("STASH_OAUTH_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("want error for unparseable timeout")
	}
}
