package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type Bookmark struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type BookmarkStore struct {
	db *sqlx.DB
}

func NewBookmarkStore(db *sqlx.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

func (s *BookmarkStore) q(query string) string { return s.db.Rebind(query) }

// ListByOwner returns all bookmarks owned by userID, newest first.
// The id tiebreak keeps ordering stable for rows created in the same instant.
func (s *BookmarkStore) ListByOwner(ctx context.Context, userID string) ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.SelectContext(ctx, &bookmarks, s.q(`
		SELECT * FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC, id DESC
	`), userID)
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (s *BookmarkStore) GetByID(ctx context.Context, id int64) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b, s.q(`SELECT * FROM bookmarks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a bookmark owned by userID. The id and created_at are
// server-assigned; callers never supply them.
func (s *BookmarkStore) Create(ctx context.Context, userID, url, title, description string) (*Bookmark, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO bookmarks (user_id, url, title, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), userID, url, title, description, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		return s.GetByID(ctx, id)
	}

	// lib/pq does not support LastInsertId; fall back to the owner's newest row.
	var b Bookmark
	err = s.db.GetContext(ctx, &b, s.q(`
		SELECT * FROM bookmarks WHERE user_id = ? ORDER BY id DESC LIMIT 1
	`), userID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update replaces the mutable fields of a bookmark. Owner, id, and
// created_at are never touched.
func (s *BookmarkStore) Update(ctx context.Context, id int64, url, title, description string) (*Bookmark, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE bookmarks SET url = ?, title = ?, description = ? WHERE id = ?
	`), url, title, description, id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete hard-deletes a bookmark. Deleting a row that is already gone
// returns ErrNotFound.
func (s *BookmarkStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM bookmarks WHERE id = ?`), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
