package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/config"

	"github.com/google/uuid"
)

func newService(secret string, ttl time.Duration) *TokenService {
	return NewTokenService(config.Config{JWTSecret: secret, JWTExpiresIn: ttl})
}

func TestToken_RoundTrip(t *testing.T) {
	svc := newService("secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateToken(id)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	got, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got != id {
		t.Errorf("user id = %s, want %s", got, id)
	}
}

func TestToken_Expired(t *testing.T) {
	svc := newService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	svc.now = time.Now
	if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestToken_WrongSecret(t *testing.T) {
	token, _ := newService("a", time.Hour).GenerateToken(uuid.New())
	if _, err := newService("b", time.Hour).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestToken_Garbage(t *testing.T) {
	if _, err := newService("a", time.Hour).ParseToken("not.a.token"); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("unexpected hash format %q", hash)
	}
	if !CheckPassword("password123", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("password124", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", hash) || CheckPassword("password123", "") {
		t.Error("empty input accepted")
	}
	if _, err := HashPassword(""); err == nil {
		t.Error("empty password should not hash")
	}
}
