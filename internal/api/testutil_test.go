package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/urlstash/urlstash/internal/api"
	"github.com/urlstash/urlstash/internal/auth"
	"github.com/urlstash/urlstash/internal/store"
	"github.com/urlstash/urlstash/internal/testutil"
)

// testEnv holds the router and stores for full-surface tests.
type testEnv struct {
	Router     http.Handler
	UserStore  *store.UserStore
	Bookmarks  *store.BookmarkStore
	TokenStore *auth.SQLTokenStore
	Issuer     *auth.SessionIssuer
}

// newTestEnv wires the real router over an in-memory SQLite database. The
// Google client carries no credentials, so provider-boundary endpoints
// exercise the unconfigured paths without network access.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)

	users := store.NewUserStore(conn)
	bookmarks := store.NewBookmarkStore(conn)
	appConfig := store.NewAppConfigStore(conn)
	tokens := auth.NewSQLTokenStore(conn)

	google := auth.NewGoogleClient("", "", appConfig, 2*time.Second)
	issuer := auth.NewSessionIssuer(users, tokens)
	guard := auth.NewTokenMiddleware(tokens, users)

	router := api.NewRouter(api.Deps{
		Google:     google,
		Issuer:     issuer,
		TokenGuard: guard,
		Bookmarks:  bookmarks,
	})

	return &testEnv{
		Router:     router,
		UserStore:  users,
		Bookmarks:  bookmarks,
		TokenStore: tokens,
		Issuer:     issuer,
	}
}

// login seeds a user via the session issuer and returns it with a live token.
func login(t *testing.T, env *testEnv, email string) (*store.User, string) {
	t.Helper()
	user, plaintext, err := env.Issuer.Login(context.Background(), &auth.Profile{
		Subject: "sub-" + email,
		Email:   email,
		Name:    "Test User",
	})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return user, plaintext
}

// doJSON performs a request with an optional token and JSON body, returning
// the recorder.
func doJSON(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorded body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
