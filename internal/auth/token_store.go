package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urlstash/urlstash/internal/store"
)

// TokenRecord represents a row in the session_tokens table. There is at most
// one row per user.
type TokenRecord struct {
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	CreatedAt time.Time `db:"created_at"`
}

// TokenStore defines operations for session token management.
type TokenStore interface {
	Replace(ctx context.Context, userID, tokenHash string) error
	GetByHash(ctx context.Context, hash string) (*TokenRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// SQLTokenStore is the sqlx-backed implementation of TokenStore.
type SQLTokenStore struct {
	db *sqlx.DB
}

func NewSQLTokenStore(db *sqlx.DB) *SQLTokenStore {
	return &SQLTokenStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *SQLTokenStore) q(query string) string { return s.db.Rebind(query) }

// Replace installs tokenHash as the user's only session token, displacing
// any previous one as a single-row upsert. Concurrent logins for the same
// user race safely: the last writer wins and the loser's plaintext stops
// matching immediately.
//
// TODO: ON CONFLICT ... DO UPDATE covers SQLite and PostgreSQL; MySQL needs
// INSERT ... ON DUPLICATE KEY UPDATE before mysql can be supported here.
func (s *SQLTokenStore) Replace(ctx context.Context, userID, tokenHash string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO session_tokens (user_id, token_hash, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			token_hash = excluded.token_hash,
			created_at = excluded.created_at
	`), userID, tokenHash, now)
	return err
}

// GetByHash returns the token record matching the given hash, or store.ErrNotFound.
func (s *SQLTokenStore) GetByHash(ctx context.Context, hash string) (*TokenRecord, error) {
	var rec TokenRecord
	err := s.db.GetContext(ctx, &rec, s.q(`SELECT * FROM session_tokens WHERE token_hash = ?`), hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteByUser removes the user's session token. Deleting when no token
// exists is not an error: logout is idempotent from the caller's view.
func (s *SQLTokenStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM session_tokens WHERE user_id = ?`), userID)
	return err
}

// GenerateToken creates a new session token with the "us_" prefix.
// It returns the plaintext token, its SHA-256 hash, and any error.
// Plaintext = "us_" + base62-encoded 32 cryptographically random bytes.
// Hash = hex-encoded SHA-256 of the plaintext; only the hash is stored.
func GenerateToken() (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return
	}

	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	encoded := make([]byte, 0, 44)
	n := new(big.Int).SetBytes(b)
	base := big.NewInt(62)
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		encoded = append(encoded, alphabet[mod.Int64()])
	}
	// Reverse to get most-significant digit first.
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}

	plaintext = "us_" + string(encoded)
	h := sha256.Sum256([]byte(plaintext))
	hash = hex.EncodeToString(h[:])
	return
}

// HashToken returns the hex-encoded SHA-256 hash of a plaintext token.
func HashToken(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}
