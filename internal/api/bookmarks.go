package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/urlstash/urlstash/internal/auth"
	"github.com/urlstash/urlstash/internal/metrics"
	"github.com/urlstash/urlstash/internal/store"
)

// bookmarksHandler provides owner-scoped CRUD over bookmarks.
type bookmarksHandler struct {
	bookmarks store.BookmarkStoreIface
}

func registerBookmarkRoutes(r chi.Router, bookmarks store.BookmarkStoreIface) {
	h := &bookmarksHandler{bookmarks: bookmarks}
	r.Get("/api/bookmarks/", h.List)
	r.Post("/api/bookmarks/", h.Create)
	r.Get("/api/bookmarks/{id}/", h.Get)
	r.Put("/api/bookmarks/{id}/", h.Update)
	r.Patch("/api/bookmarks/{id}/", h.Update)
	r.Delete("/api/bookmarks/{id}/", h.Delete)
}

// fetchOwned loads the bookmark and enforces ownership. Existence is checked
// before ownership, so a bookmark that is missing is 404 and one owned by
// someone else is 403, for reads and writes alike. A non-numeric id can
// never exist and is reported the same as a missing row.
func (h *bookmarksHandler) fetchOwned(w http.ResponseWriter, r *http.Request) (*store.Bookmark, *store.User, bool) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return nil, nil, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return nil, nil, false
	}

	b, err := h.bookmarks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return nil, nil, false
		}
		chlog.Error("load bookmark", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return nil, nil, false
	}

	if b.UserID != user.ID {
		writeError(w, http.StatusForbidden, "forbidden", "FORBIDDEN")
		return nil, nil, false
	}

	return b, user, true
}

// List returns the caller's bookmarks, newest first.
// GET /api/bookmarks/
//
// @Summary      List bookmarks
// @Description  Returns the caller's bookmarks ordered by creation time, newest first.
// @Tags         Bookmarks
// @Produce      json
// @Success      200  {array}   BookmarkResponse
// @Failure      401  {object}  errorBody
// @Security     SessionToken
// @Router       /api/bookmarks/ [get]
func (h *bookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	bookmarks, err := h.bookmarks.ListByOwner(r.Context(), user.ID)
	if err != nil {
		chlog.Error("list bookmarks", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := make([]BookmarkResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		resp = append(resp, toBookmarkResponse(b, user.Email))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create stores a new bookmark owned by the caller.
// POST /api/bookmarks/
//
// @Summary      Create a bookmark
// @Description  Validates url and title and stores a bookmark owned by the caller.
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Param        body  body      BookmarkRequest  true  "Bookmark to create"
// @Success      201   {object}  BookmarkResponse
// @Failure      400   {object}  store.FieldErrors
// @Failure      401   {object}  errorBody
// @Security     SessionToken
// @Router       /api/bookmarks/ [post]
func (h *bookmarksHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req BookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	if errs := validateRequired(&req); errs.HasErrors() {
		writeFieldErrors(w, errs)
		return
	}
	if errs := store.ValidateBookmarkFields(req.URL, req.Title); errs.HasErrors() {
		writeFieldErrors(w, errs)
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	b, err := h.bookmarks.Create(r.Context(), user.ID, *req.URL, *req.Title, description)
	if err != nil {
		chlog.Error("create bookmark", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	metrics.BookmarksCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, toBookmarkResponse(b, user.Email))
}

// Get returns a single bookmark.
// GET /api/bookmarks/{id}/
//
// @Summary      Get a bookmark
// @Tags         Bookmarks
// @Produce      json
// @Param        id   path      int  true  "Bookmark ID"
// @Success      200  {object}  BookmarkResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Security     SessionToken
// @Router       /api/bookmarks/{id}/ [get]
func (h *bookmarksHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toBookmarkResponse(b, user.Email))
}

// Update modifies a bookmark. PUT replaces all mutable fields; PATCH changes
// only the fields supplied. Owner, id, and created_at are immutable; any
// values sent for them are silently dropped by the request type.
// PUT|PATCH /api/bookmarks/{id}/
//
// @Summary      Update a bookmark
// @Description  PUT replaces url/title/description; PATCH updates supplied fields only.
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Bookmark ID"
// @Param        body  body      BookmarkRequest  true  "Fields to update"
// @Success      200   {object}  BookmarkResponse
// @Failure      400   {object}  store.FieldErrors
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Security     SessionToken
// @Router       /api/bookmarks/{id}/ [put]
func (h *bookmarksHandler) Update(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	var req BookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	if r.Method == http.MethodPut {
		if errs := validateRequired(&req); errs.HasErrors() {
			writeFieldErrors(w, errs)
			return
		}
	}
	if errs := store.ValidateBookmarkFields(req.URL, req.Title); errs.HasErrors() {
		writeFieldErrors(w, errs)
		return
	}

	// Start from the stored row for PATCH; for PUT the required-field check
	// above guarantees url and title are present, and an absent description
	// resets to its default.
	url, title, description := b.URL, b.Title, b.Description
	if r.Method == http.MethodPut {
		description = ""
	}
	if req.URL != nil {
		url = *req.URL
	}
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}

	updated, err := h.bookmarks.Update(r.Context(), b.ID, url, title, description)
	if err != nil {
		chlog.Error("update bookmark", "id", b.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, toBookmarkResponse(updated, user.Email))
}

// Delete hard-deletes a bookmark and returns a confirmation payload rather
// than a bare 204.
// DELETE /api/bookmarks/{id}/
//
// @Summary      Delete a bookmark
// @Tags         Bookmarks
// @Produce      json
// @Param        id   path      int  true  "Bookmark ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Security     SessionToken
// @Router       /api/bookmarks/{id}/ [delete]
func (h *bookmarksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	if err := h.bookmarks.Delete(r.Context(), b.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		chlog.Error("delete bookmark", "id", b.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	metrics.BookmarksDeletedTotal.Inc()
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Bookmark deleted successfully"})
}

// validateRequired enforces presence of url and title for create and PUT.
func validateRequired(req *BookmarkRequest) store.FieldErrors {
	errs := store.FieldErrors{}
	if req.URL == nil {
		errs["url"] = append(errs["url"], "This field is required.")
	}
	if req.Title == nil {
		errs["title"] = append(errs["title"], "This field is required.")
	}
	return errs
}

func toBookmarkResponse(b *store.Bookmark, ownerEmail string) BookmarkResponse {
	return BookmarkResponse{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		User:        ownerEmail,
	}
}
