package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/urlstash/urlstash/internal/store"
)

const googleIssuer = "https://accounts.google.com"

// ErrProviderNotConfigured is returned when no Google client credentials are
// available, neither statically nor in the app_config table.
var ErrProviderNotConfigured = errors.New("google oauth is not configured")

// ExchangeError indicates the provider rejected the authorization code or
// access token (expired, already used, redirect-URI mismatch).
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string { return fmt.Sprintf("code exchange rejected: %v", e.Err) }
func (e *ExchangeError) Unwrap() error { return e.Err }

// ProfileFetchError indicates the userinfo endpoint was unreachable or
// returned unusable data.
type ProfileFetchError struct {
	Err error
}

func (e *ProfileFetchError) Error() string { return fmt.Sprintf("profile fetch failed: %v", e.Err) }
func (e *ProfileFetchError) Unwrap() error { return e.Err }

// Profile is the verified external identity returned by Google.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

// GoogleClient converts an authorization code or raw access token into a
// verified Profile. Discovery and credential resolution are lazy so the
// server can start before the provider is provisioned.
type GoogleClient struct {
	clientID     string // static config, may be empty
	clientSecret string
	appConfig    *store.AppConfigStore
	timeout      time.Duration

	mu       sync.Mutex
	provider *gooidc.Provider
}

// NewGoogleClient creates a client with static credentials (either may be
// empty) and an app_config fallback.
func NewGoogleClient(clientID, clientSecret string, appConfig *store.AppConfigStore, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		appConfig:    appConfig,
		timeout:      timeout,
	}
}

// credentials resolves the client id/secret: static config first, then the
// app_config rows written by `urlstash setup`.
func (c *GoogleClient) credentials(ctx context.Context) (id, secret string, err error) {
	id, secret = c.clientID, c.clientSecret
	if id != "" && secret != "" {
		return id, secret, nil
	}
	if c.appConfig != nil {
		if id == "" {
			id, err = c.appConfig.Get(ctx, store.ConfigGoogleClientID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return "", "", err
			}
		}
		if secret == "" {
			secret, err = c.appConfig.Get(ctx, store.ConfigGoogleClientSecret)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return "", "", err
			}
		}
	}
	if id == "" || secret == "" {
		return "", "", ErrProviderNotConfigured
	}
	return id, secret, nil
}

// discover performs OIDC discovery against Google once and caches the result.
func (c *GoogleClient) discover(ctx context.Context) (*gooidc.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		return c.provider, nil
	}
	provider, err := gooidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC provider discovery failed for %s: %w", googleIssuer, err)
	}
	c.provider = provider
	return provider, nil
}

func (c *GoogleClient) oauth2Config(ctx context.Context, redirectURI string) (*oauth2.Config, error) {
	id, secret, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		RedirectURL:  redirectURI,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
	}, nil
}

// AuthCodeURL returns the Google consent page URL for the given redirect URI.
func (c *GoogleClient) AuthCodeURL(ctx context.Context, redirectURI string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg, err := c.oauth2Config(ctx, redirectURI)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL("", oauth2.AccessTypeOnline), nil
}

// ExchangeCode trades an authorization code for tokens and fetches the
// profile. The redirect URI must exactly match the one used to obtain the
// code; a mismatch surfaces as an ExchangeError from the provider.
func (c *GoogleClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg, err := c.oauth2Config(ctx, redirectURI)
	if err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}

	return c.fetchProfile(ctx, oauth2.StaticTokenSource(token))
}

// FetchProfile fetches the profile for a raw provider access token,
// skipping the exchange step.
func (c *GoogleClient) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Credentials are still required: an unconfigured provider must not
	// accept tokens from arbitrary clients.
	if _, _, err := c.credentials(ctx); err != nil {
		return nil, err
	}

	return c.fetchProfile(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
}

func (c *GoogleClient) fetchProfile(ctx context.Context, ts oauth2.TokenSource) (*Profile, error) {
	provider, err := c.discover(ctx)
	if err != nil {
		return nil, &ProfileFetchError{Err: err}
	}

	userInfo, err := provider.UserInfo(ctx, ts)
	if err != nil {
		return nil, &ProfileFetchError{Err: err}
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if err := userInfo.Claims(&claims); err != nil {
		return nil, &ProfileFetchError{Err: err}
	}
	if claims.Email == "" {
		return nil, &ProfileFetchError{Err: errors.New("userinfo response has no email")}
	}

	return &Profile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
