package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Well-known app_config keys.
const (
	ConfigGoogleClientID     = "google.client_id"
	ConfigGoogleClientSecret = "google.client_secret"
	ConfigSiteBaseURL        = "site.base_url"
)

// AppConfigStore holds deployment-applied settings that are not present in
// static configuration, written once by `urlstash setup`.
type AppConfigStore struct {
	db *sqlx.DB
}

func NewAppConfigStore(db *sqlx.DB) *AppConfigStore {
	return &AppConfigStore{db: db}
}

func (s *AppConfigStore) q(query string) string { return s.db.Rebind(query) }

// Get returns the value for key, or ErrNotFound.
func (s *AppConfigStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.q(`SELECT value FROM app_config WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores key=value, replacing any previous value. Idempotent.
func (s *AppConfigStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO app_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`), key, value, now)
	return err
}
