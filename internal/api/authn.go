package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/urlstash/urlstash/internal/auth"
	"github.com/urlstash/urlstash/internal/metrics"
	"github.com/urlstash/urlstash/internal/store"
)

// authHandler provides the Google login flow and session endpoints.
type authHandler struct {
	google  *auth.GoogleClient
	issuer  *auth.SessionIssuer
	baseURL string // overrides request-derived host when set
}

func registerAuthRoutes(r chi.Router, guarded chi.Router, google *auth.GoogleClient, issuer *auth.SessionIssuer, baseURL string) {
	h := &authHandler{google: google, issuer: issuer, baseURL: baseURL}

	r.Get("/api/auth/google/redirect/", h.Redirect)
	r.Get("/api/auth/google/callback/", h.Callback)
	r.Post("/api/auth/google/callback/", h.Callback)
	r.Post("/api/auth/google/", h.Login)

	guarded.Get("/api/auth/user/", h.User)
	guarded.Post("/api/auth/logout/", h.Logout)
}

// callbackURL builds the redirect URI Google sends the user back to. It must
// exactly match between the consent URL and the code exchange.
func (h *authHandler) callbackURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + "/api/auth/google/callback/"
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/api/auth/google/callback/"
}

// Redirect returns the Google consent page URL for the client to follow.
// GET /api/auth/google/redirect/
//
// @Summary      Start Google login
// @Description  Returns the consent URL that initiates the OAuth flow.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/auth/google/redirect/ [get]
func (h *authHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.google.AuthCodeURL(r.Context(), h.callbackURL(r))
	if err != nil {
		if errors.Is(err, auth.ErrProviderNotConfigured) {
			writeOAuthError(w, http.StatusInternalServerError,
				"Google OAuth not configured",
				"Please configure Google OAuth credentials via urlstash setup")
			return
		}
		chlog.Error("build auth url", "error", err)
		writeOAuthError(w, http.StatusInternalServerError,
			"Google OAuth unavailable",
			"Could not reach the identity provider")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"message":  "Redirect to this URL to initiate Google OAuth login",
	})
}

// Callback receives the provider redirect carrying the authorization code.
// The code is handed back to the client, which completes login via
// POST /api/auth/google/. Codes are single-use, so nothing is exchanged here.
// GET|POST /api/auth/google/callback/
func (h *authHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" && r.Method == http.MethodPost {
		var body struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		code = body.Code
	}

	if code == "" {
		writeOAuthError(w, http.StatusBadRequest,
			"Missing authorization code",
			"No code parameter received from Google")
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]string{
			"message":   "Authorization code received",
			"code":      code,
			"next_step": "POST this code to /api/auth/google/ to get your auth token",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Use POST /api/auth/google/ with the code to complete login",
		"code":    code,
	})
}

// Login exchanges an authorization code (or a raw access token) for a
// session token.
// POST /api/auth/google/
//
// @Summary      Complete Google login
// @Description  Exchanges a code or access token for a session token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Code or access token"
// @Success      200   {object}  LoginResponse
// @Failure      400   {object}  errorBody
// @Router       /api/auth/google/ [post]
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.Code == "" && req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "code or access_token is required", "BAD_REQUEST")
		return
	}

	start := time.Now()
	var profile *auth.Profile
	var err error
	if req.Code != "" {
		profile, err = h.google.ExchangeCode(r.Context(), req.Code, h.callbackURL(r))
	} else {
		profile, err = h.google.FetchProfile(r.Context(), req.AccessToken)
	}
	metrics.OAuthExchangeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	_, plaintext, err := h.issuer.Login(r.Context(), profile)
	if err != nil {
		if errors.Is(err, store.ErrIdentityConflict) {
			metrics.LoginsTotal.WithLabelValues("conflict").Inc()
			writeError(w, http.StatusConflict, "email is bound to a different identity", "IDENTITY_CONFLICT")
			return
		}
		chlog.Error("issue session", "email", profile.Email, "error", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, LoginResponse{Key: plaintext})
}

// writeLoginError maps provider-boundary failures onto the error taxonomy.
// Every failure is terminal for this request; authorization codes are
// single-use and the client must restart the flow.
func (h *authHandler) writeLoginError(w http.ResponseWriter, err error) {
	var exchangeErr *auth.ExchangeError
	var profileErr *auth.ProfileFetchError

	switch {
	case errors.Is(err, auth.ErrProviderNotConfigured):
		metrics.LoginsTotal.WithLabelValues("unconfigured").Inc()
		writeError(w, http.StatusInternalServerError, "Google OAuth not configured", "PROVIDER_NOT_CONFIGURED")
	case errors.As(err, &exchangeErr):
		metrics.LoginsTotal.WithLabelValues("exchange_failed").Inc()
		writeError(w, http.StatusBadRequest, exchangeErr.Error(), "EXCHANGE_FAILED")
	case errors.As(err, &profileErr):
		metrics.LoginsTotal.WithLabelValues("profile_failed").Inc()
		writeError(w, http.StatusBadGateway, profileErr.Error(), "PROFILE_FETCH_FAILED")
	default:
		chlog.Error("google login", "error", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}

// User returns the authenticated caller's profile.
// GET /api/auth/user/
//
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  errorBody
// @Security     SessionToken
// @Router       /api/auth/user/ [get]
func (h *authHandler) User(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
	})
}

// Logout deletes the caller's session token. A missing token row or a
// store error still yields 200; the client's token is gone either way.
// POST /api/auth/logout/
//
// @Summary      Log out
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Security     SessionToken
// @Router       /api/auth/logout/ [post]
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	if err := h.issuer.Logout(r.Context(), user.ID); err != nil {
		chlog.Error("logout", "user", user.ID, "error", err)
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}
