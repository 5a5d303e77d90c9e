package auth

import (
	"context"

	"github.com/urlstash/urlstash/internal/store"
)

// SessionIssuer maps a verified external profile to a local user and issues
// the user's single session token.
type SessionIssuer struct {
	users  *store.UserStore
	tokens TokenStore
}

func NewSessionIssuer(users *store.UserStore, tokens TokenStore) *SessionIssuer {
	return &SessionIssuer{users: users, tokens: tokens}
}

// Login resolves profile to a local user, creating one on first login, and
// returns a fresh plaintext token. Any previous token for the user is
// replaced atomically, so re-running login never duplicates users and always
// leaves exactly one valid token.
//
// Returns store.ErrIdentityConflict when the profile's email is bound to an
// account with a different external identity.
func (s *SessionIssuer) Login(ctx context.Context, profile *Profile) (*store.User, string, error) {
	user, err := s.users.GetOrCreateByEmail(ctx, profile.Email, profile.Subject, profile.Name)
	if err != nil {
		return nil, "", err
	}

	plaintext, hash, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}
	if err := s.tokens.Replace(ctx, user.ID, hash); err != nil {
		return nil, "", err
	}

	return user, plaintext, nil
}

// Logout deletes the user's session token. A missing token is not an error.
func (s *SessionIssuer) Logout(ctx context.Context, userID string) error {
	return s.tokens.DeleteByUser(ctx, userID)
}
