package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Google struct {
		ClientID     string
		ClientSecret string
	}
	Server struct {
		// BaseURL overrides the callback host derived from the incoming
		// request. Needed behind proxies that rewrite Host.
		BaseURL string
	}
	AdminEmail   string
	OAuthTimeout time.Duration
}

// Load reads config from environment (STASH_ prefix) and optional urlstash.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("urlstash")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	// GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET predate the STASH_ prefix
	// and are what existing deployments already set.
	_ = v.BindEnv("google.client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("oauth.timeout", "5s")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Google.ClientID = v.GetString("google.client_id")
	cfg.Google.ClientSecret = v.GetString("google.client_secret")
	cfg.Server.BaseURL = strings.TrimRight(v.GetString("server.base_url"), "/")
	cfg.AdminEmail = v.GetString("admin_email")

	timeout, err := time.ParseDuration(v.GetString("oauth.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid STASH_OAUTH_TIMEOUT: %w", err)
	}
	cfg.OAuthTimeout = timeout

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("STASH_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("STASH_DB_DSN is required")
	}

	// Google credentials are deliberately not required here. They may be
	// provisioned into the app_config table by `urlstash setup` and are
	// resolved lazily at login time.

	return cfg, nil
}
