package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/urlstash/urlstash/internal/auth"
	"github.com/urlstash/urlstash/internal/store"
	"github.com/urlstash/urlstash/internal/testutil"
)

func TestGenerateToken(t *testing.T) {
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(plaintext, "us_") {
		t.Errorf("plaintext %q missing us_ prefix", plaintext)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if auth.HashToken(plaintext) != hash {
		t.Error("HashToken(plaintext) != returned hash")
	}

	// Two generations never collide.
	plaintext2, _, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if plaintext == plaintext2 {
		t.Error("two generated tokens are identical")
	}
}

func TestTokenReplaceInvalidatesPrevious(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	tokens := auth.NewSQLTokenStore(conn)
	ctx := context.Background()

	alice, err := users.GetOrCreateByEmail(ctx, "alice@example.com", "sub-1", "Alice")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, firstHash, _ := auth.GenerateToken()
	if err := tokens.Replace(ctx, alice.ID, firstHash); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	_, secondHash, _ := auth.GenerateToken()
	if err := tokens.Replace(ctx, alice.ID, secondHash); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	// Last writer wins; the first token no longer authenticates.
	if _, err := tokens.GetByHash(ctx, firstHash); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("first token lookup err = %v, want ErrNotFound", err)
	}
	rec, err := tokens.GetByHash(ctx, secondHash)
	if err != nil {
		t.Fatalf("second token lookup: %v", err)
	}
	if rec.UserID != alice.ID {
		t.Errorf("token maps to %q, want %q", rec.UserID, alice.ID)
	}
}

func TestTokenDeleteByUserIdempotent(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	tokens := auth.NewSQLTokenStore(conn)
	ctx := context.Background()

	alice, err := users.GetOrCreateByEmail(ctx, "alice@example.com", "sub-1", "Alice")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, hash, _ := auth.GenerateToken()
	if err := tokens.Replace(ctx, alice.ID, hash); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := tokens.DeleteByUser(ctx, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tokens.GetByHash(ctx, hash); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("token survives delete: err = %v", err)
	}
	// Second delete with no row is still a success.
	if err := tokens.DeleteByUser(ctx, alice.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSessionIssuerLogin(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	tokens := auth.NewSQLTokenStore(conn)
	issuer := auth.NewSessionIssuer(users, tokens)
	ctx := context.Background()

	profile := &auth.Profile{Subject: "sub-1", Email: "alice@example.com", Name: "Alice"}

	user, first, err := issuer.Login(ctx, profile)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if first == "" {
		t.Fatal("no token issued")
	}

	// Re-login is safe: same user, fresh token, old token dead.
	user2, second, err := issuer.Login(ctx, profile)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if user2.ID != user.ID {
		t.Errorf("re-login duplicated user: %q vs %q", user2.ID, user.ID)
	}
	if second == first {
		t.Error("re-login returned the same token")
	}
	if _, err := tokens.GetByHash(ctx, auth.HashToken(first)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old token still valid after re-login: err = %v", err)
	}
	if _, err := tokens.GetByHash(ctx, auth.HashToken(second)); err != nil {
		t.Errorf("new token not valid: %v", err)
	}
}
