package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"deepcrawler/internal/domain"
)

func testUser() domain.User {
	return domain.User{ID: 7, Username: "ana", Email: "ana@example.com"}
}

func TestJWTService_IssueParse(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, NewMemoryRevocationStore())

	token, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "ana" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", got)
	}
}

func TestJWTService_DefaultTTL(t *testing.T) {
	svc := NewJWTService("secret", 0, nil)
	if svc.TTL() != 2*time.Hour {
		t.Fatalf("expected 2h default ttl, got %v", svc.TTL())
	}
}

func TestJWTService_Revoke(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, NewMemoryRevocationStore())
	token, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrJWTRevoked) {
		t.Fatalf("expected ErrJWTRevoked, got %v", err)
	}
	if err := svc.Revoke(token); !errors.Is(err, ErrJWTRevoked) {
		t.Fatalf("expected second revoke to fail with ErrJWTRevoked, got %v", err)
	}
}

func TestJWTService_RejectsInvalidTokens(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, nil)
	other := NewJWTService("other-secret", time.Hour, nil)

	foreign, err := other.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Parse(foreign); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong signature, got %v", err)
	}
	if _, err := svc.Parse(""); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for empty token, got %v", err)
	}

	now := time.Now().UTC()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    "deepcrawler",
			Subject:   "7",
			IssuedAt:  jwt.NewNumericDate(now.Add(-3 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Parse(signed); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := svc.Parse(unsigned); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for alg none, got %v", err)
	}
}
