package httpapi

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/store"
)

type userStoreStub struct {
	users map[string]domain.UserAccount
}

func (s *userStoreStub) GetUser(_ context.Context, username string) (*domain.UserAccount, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func newStubWithUser(t *testing.T, username, password, role string, active bool) *userStoreStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &userStoreStub{users: map[string]domain.UserAccount{
		username: {
			Username: username,
			Password: string(hash),
			Role:     role,
			Active:   active,
		},
	}}
}

func TestLoginIssuesParseableToken(t *testing.T) {
	stub := newStubWithUser(t, "admin", "secret-pass", "admin", true)
	auth := NewAuthManager("test-secret", time.Hour, stub)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "Admin ", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != "admin" {
		t.Fatalf("role = %q, want admin", resp.Role)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	stub := newStubWithUser(t, "admin", "secret-pass", "admin", true)
	auth := NewAuthManager("test-secret", time.Hour, stub)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "nope"}); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "nope"}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	stub := newStubWithUser(t, "former", "secret-pass", "operator", false)
	auth := NewAuthManager("test-secret", time.Hour, stub)

	_, err := auth.Login(context.Background(), domain.LoginRequest{Username: "former", Password: "secret-pass"})
	if err == nil || !strings.Contains(err.Error(), "inactive") {
		t.Fatalf("err = %v, want inactive account error", err)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	stub := newStubWithUser(t, "admin", "secret-pass", "admin", true)
	issuer := NewAuthManager("secret-one", time.Hour, stub)
	verifier := NewAuthManager("secret-two", time.Hour, stub)

	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	stub := newStubWithUser(t, "admin", "secret-pass", "admin", true)
	auth := NewAuthManager("test-secret", time.Hour, stub)

	// Sign a claim that expired a minute ago; Login can't produce one
	// because the constructor floors non-positive TTLs.
	token, err := auth.sign("admin", "admin", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatal("expired token must not verify")
	}
}
