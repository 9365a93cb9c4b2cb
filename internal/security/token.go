package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Realtime tokens authenticate WebSocket connections, which cannot always
// carry the session cookie (e.g. cross-origin clients). They are short-lived
// and scoped to a single user and family.

var ErrInvalidToken = errors.New("invalid realtime token")

// RealtimeClaims are the claims embedded in a realtime token
type RealtimeClaims struct {
	FamilyID string `json:"fid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates signed realtime tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer. ttl bounds how long a minted token
// stays valid; 1 minute is plenty for a client to open its socket.
//
// An empty secret is replaced with a random per-process key: signing with the
// well-known empty HS256 key would let anyone mint a token for any family.
// Ephemeral keys only cost minted tokens a server restart, which the short
// ttl already allows for.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("failed to generate realtime token key: %v", err))
		}
	}
	return &TokenIssuer{secret: key, ttl: ttl}
}

// Issue mints a signed token for a user in a family
func (i *TokenIssuer) Issue(userID, familyID string) (string, error) {
	now := time.Now()
	claims := RealtimeClaims{
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign realtime token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the user and family it was minted for
func (i *TokenIssuer) Validate(tokenString string) (userID, familyID string, err error) {
	claims := &RealtimeClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.FamilyID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.FamilyID, nil
}
