package api

import "time"

// --- Auth types ---

// LoginRequest is the request body for POST /api/auth/google/.
// Exactly one of Code and AccessToken is expected; Code wins if both are set.
type LoginRequest struct {
	Code        string `json:"code,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// LoginResponse carries the opaque session token. The field name "key" is
// part of the historical API surface.
type LoginResponse struct {
	Key string `json:"key"`
}

// UserResponse is the JSON representation of the authenticated user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// --- Bookmark types ---

// BookmarkRequest is the request body for bookmark create and update.
// Pointer fields distinguish "absent" from "empty" so PATCH can change only
// what was supplied. Owner, id, and created_at are not decodable on purpose:
// anything a caller sends for them is silently ignored.
type BookmarkRequest struct {
	URL         *string `json:"url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// BookmarkResponse is the JSON representation of a single bookmark.
// "user" carries the owner's email, as it always has.
type BookmarkResponse struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	User        string    `json:"user"`
}

// MessageResponse is a bare human-readable confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}
