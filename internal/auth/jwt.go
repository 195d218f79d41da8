// Package auth issues and checks the owner's session tokens and password.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is set on every token and required when validating.
	Issuer = "playlist"

	// OwnerSubject identifies the single owner account.
	OwnerSubject = "owner"

	// DefaultTokenExpiry is used when no lifetime is configured.
	DefaultTokenExpiry = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims of an owner session.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a new owner token valid for ttl, with a unique ID so it
// can be revoked on logout.
func GenerateToken(secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    Issuer,
			Subject:   OwnerSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenStr and checks its signature, expiry, issuer and
// subject.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithSubject(OwnerSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
