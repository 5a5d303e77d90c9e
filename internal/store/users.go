package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrIdentityConflict is returned when an email is already bound to an
// account whose external identity does not match the one logging in.
var ErrIdentityConflict = errors.New("email is bound to a different identity")

type User struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Username    string    `db:"username"`
	Provider    string    `db:"provider"`
	Subject     string    `db:"subject"`
	IsStaff     bool      `db:"is_staff"`
	IsSuperuser bool      `db:"is_superuser"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// GetOrCreateByEmail returns the user bound to email, creating one on first
// login. The email is the immutable identity key; subject is the provider
// user id from the verified profile.
//
// A user previously provisioned by `urlstash setup` has an empty subject and
// is claimed by the first matching OAuth login. A stored non-empty subject
// that differs from the incoming one means the email was bound through an
// incompatible identity path, which is ErrIdentityConflict.
func (s *UserStore) GetOrCreateByEmail(ctx context.Context, email, subject, name string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		if u.Subject == "" && subject != "" {
			return s.bindSubject(ctx, u.ID, subject)
		}
		if u.Subject != subject {
			return nil, ErrIdentityConflict
		}
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	username := usernameFromProfile(email, name)

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, username, provider, subject, is_staff, is_superuser, created_at, updated_at)
		VALUES (?, ?, ?, 'google', ?, ?, ?, ?, ?)
	`), id, email, username, subject, false, false, now, now)
	if err != nil {
		// A concurrent first login for the same email may have won the
		// insert; the unique index makes that visible here.
		if isUniqueConstraintError(err) {
			return s.GetOrCreateByEmail(ctx, email, subject, name)
		}
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// CreateSuperuser inserts a staff/superuser account if no user holds email.
// Idempotent: re-running against an existing email is a no-op.
func (s *UserStore) CreateSuperuser(ctx context.Context, email, username string) (*User, bool, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, username, provider, subject, is_staff, is_superuser, created_at, updated_at)
		VALUES (?, ?, ?, 'bootstrap', '', ?, ?, ?, ?)
	`), id, email, username, true, true, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			u, err = s.GetByEmail(ctx, email)
			return u, false, err
		}
		return nil, false, err
	}

	u, err = s.GetByID(ctx, id)
	return u, true, err
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// bindSubject attaches a provider subject to a bootstrap account on its
// first OAuth login.
func (s *UserStore) bindSubject(ctx context.Context, id, subject string) (*User, error) {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET subject = ?, updated_at = ? WHERE id = ?`),
		subject, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// usernameFromProfile derives a username from the profile name, falling back
// to the local part of the email.
func usernameFromProfile(email, name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// isUniqueConstraintError checks whether err indicates a unique constraint
// violation. Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
