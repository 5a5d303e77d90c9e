package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urlstash/urlstash/internal/auth"
	"github.com/urlstash/urlstash/internal/build"
	"github.com/urlstash/urlstash/internal/store"
)

// Deps holds all dependencies required to build the router.
type Deps struct {
	Google     *auth.GoogleClient
	Issuer     *auth.SessionIssuer
	TokenGuard *auth.TokenMiddleware
	Bookmarks  store.BookmarkStoreIface
	BaseURL    string
}

// NewRouter builds the full HTTP surface. The historical paths, including
// trailing slashes, are load-bearing: clients hard-code them.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Get("/", rootIndex)
	r.Get("/api/", rootIndex)
	r.Handle("/metrics", promhttp.Handler())

	var guarded chi.Router
	r.Group(func(g chi.Router) {
		g.Use(jsonContentType)
		g.Use(deps.TokenGuard.Authenticate)
		registerBookmarkRoutes(g, deps.Bookmarks)
		guarded = g
	})

	r.Group(func(g chi.Router) {
		g.Use(jsonContentType)
		registerAuthRoutes(g, guarded, deps.Google, deps.Issuer, deps.BaseURL)
	})

	return r
}

// rootIndex describes the API, mirroring the long-standing welcome payload.
func rootIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to the Bookmark Manager API",
		"version": build.Version,
		"endpoints": map[string]any{
			"auth": map[string]string{
				"google_login": "/api/auth/google/",
				"user":         "/api/auth/user/",
				"logout":       "/api/auth/logout/",
			},
			"bookmarks": map[string]string{
				"list_create": "/api/bookmarks/",
				"detail":      "/api/bookmarks/{id}/",
			},
		},
	})
}

// jsonContentType sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
