package api_test

import (
	"context"
	"net/http"
	"testing"
)

func TestRootIndex(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/api/"} {
		rec := doJSON(t, env, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d", path, rec.Code)
			continue
		}
		var body map[string]any
		decode(t, rec, &body)
		if body["message"] != "Welcome to the Bookmark Manager API" {
			t.Errorf("GET %s: message = %v", path, body["message"])
		}
	}
}

func TestGoogleRedirectUnconfigured(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodGet, "/api/auth/google/redirect/", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when provider unconfigured", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] == "" || body["message"] == "" {
		t.Errorf("want error and message fields, got %v", body)
	}
}

func TestGoogleCallbackMissingCode(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodGet, "/api/auth/google/callback/", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "Missing authorization code" {
		t.Errorf("error = %q", body["error"])
	}

	rec = doJSON(t, env, http.MethodPost, "/api/auth/google/callback/", "", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST without code: status = %d, want 400", rec.Code)
	}
}

func TestGoogleCallbackWithCode(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodGet, "/api/auth/google/callback/?code=abc123", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["code"] != "abc123" {
		t.Errorf("code = %q, want echoed back", body["code"])
	}
	if body["next_step"] == "" {
		t.Error("GET callback should point at the login endpoint")
	}

	rec = doJSON(t, env, http.MethodPost, "/api/auth/google/callback/", "", map[string]any{"code": "abc123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d", rec.Code)
	}
	decode(t, rec, &body)
	if body["code"] != "abc123" {
		t.Errorf("POST code = %q", body["code"])
	}
}

func TestGoogleLoginRequestValidation(t *testing.T) {
	env := newTestEnv(t)

	// Neither code nor access_token.
	rec := doJSON(t, env, http.MethodPost, "/api/auth/google/", "", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d, want 400", rec.Code)
	}
}

func TestGoogleLoginUnconfiguredProvider(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/auth/google/", "", map[string]any{"code": "abc"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["code"] != "PROVIDER_NOT_CONFIGURED" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestUserProfile(t *testing.T) {
	env := newTestEnv(t)
	user, token := login(t, env, "alice@example.com")

	rec := doJSON(t, env, http.MethodGet, "/api/auth/user/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["id"] != user.ID {
		t.Errorf("id = %v, want %q", body["id"], user.ID)
	}
	if body["email"] != "alice@example.com" {
		t.Errorf("email = %v", body["email"])
	}
	if body["username"] != "Test User" {
		t.Errorf("username = %v", body["username"])
	}

	rec = doJSON(t, env, http.MethodGet, "/api/auth/user/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", rec.Code)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user, token := login(t, env, "alice@example.com")

	rec := doJSON(t, env, http.MethodPost, "/api/auth/logout/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first logout: status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["message"] != "Successfully logged out" {
		t.Errorf("message = %q", body["message"])
	}

	// Logout killed the token, so replaying it fails at the guard.
	rec = doJSON(t, env, http.MethodPost, "/api/auth/logout/", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("reusing deleted token: status = %d, want 401", rec.Code)
	}

	// Logging out with no token row left for the user is still a 200.
	_, token = login(t, env, "alice@example.com")
	if err := env.TokenStore.DeleteByUser(context.Background(), user.ID); err != nil {
		t.Fatalf("delete token row: %v", err)
	}
	rec = doJSON(t, env, http.MethodPost, "/api/auth/logout/", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("logout after row removed: status = %d, want 401 from the guard", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics: status = %d", rec.Code)
	}
}

func TestLoginReplacesToken(t *testing.T) {
	env := newTestEnv(t)
	_, first := login(t, env, "alice@example.com")
	_, second := login(t, env, "alice@example.com")

	// Only the most recent login's token works.
	rec := doJSON(t, env, http.MethodGet, "/api/auth/user/", first, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old token: status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, env, http.MethodGet, "/api/auth/user/", second, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("new token: status = %d, want 200", rec.Code)
	}

	// And there is still exactly one user.
	if _, err := env.UserStore.GetByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("user lookup: %v", err)
	}
}
