package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndValidateToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("user-1", "family-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, familyID, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if userID != "user-1" || familyID != "family-1" {
		t.Errorf("claims = (%s, %s), want (user-1, family-1)", userID, familyID)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	other := NewTokenIssuer("other-secret", time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := issuer.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	// Wrong signing key
	foreign, err := other.Issue("user-1", "family-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := issuer.Validate(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another key validated: %v", err)
	}
}

func TestEmptySecretDoesNotAcceptForgedTokens(t *testing.T) {
	issuer := NewTokenIssuer("", time.Minute)

	// A token anyone could mint by signing with the empty HS256 key
	now := time.Now()
	claims := RealtimeClaims{
		FamilyID: "victim-family-id",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "attacker",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	if err != nil {
		t.Fatalf("failed to sign forged token: %v", err)
	}

	if _, _, err := issuer.Validate(forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with the empty key validated: %v", err)
	}

	// The issuer's own tokens still round-trip on its generated key
	token, err := issuer.Issue("user-1", "family-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := issuer.Validate(token); err != nil {
		t.Errorf("own token rejected: %v", err)
	}

	// Each unconfigured issuer gets its own key
	other := NewTokenIssuer("", time.Minute)
	if _, _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token validated across independently generated keys: %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("user-1", "family-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := issuer.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token validated: %v", err)
	}
}
