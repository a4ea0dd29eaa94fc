// Package auth mints and validates the two kinds of signed token this hub
// deals in: the long-lived bearer token that authenticates a WebSocket or
// HTTP request, and the short-lived anonymous watercooler redirect token.
// Both are HS256, signed with the same SESSION_SECRET — the hub never
// issues asymmetric keys because there's only one verifier: itself.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BearerTTL is how long a hub-minted bearer token stays valid. The hub
// itself never issues these to end users — that's the job of the external
// login/signup service — but tests and the anonymous flow's issuing service
// need a concrete lifetime to reason about.
const BearerTTL = 365 * 24 * time.Hour

// AnonymousTTL is the lifetime of a watercooler redirect token, per
// spec §6.5.
const AnonymousTTL = 10 * time.Minute

const anonymousPurpose = "anonymous_watercooler"

// BearerClaims is the payload of every hub-minted bearer token. It carries
// only the email — the hub resolves the rest (user ID, team) by looking the
// email up through the Persistence Adapter on every request, so a bearer
// token can't go stale just because a user's ID or team changed.
type BearerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateBearerToken signs a bearer token for the given email. Exposed for
// the external auth service (or tests) that stand in for social login and
// password sign-up, both explicitly out of this hub's scope.
func GenerateBearerToken(email, secret string) (string, error) {
	now := time.Now()
	claims := BearerClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(BearerTTL)),
			Issuer:    "signalhub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign bearer token: %w", err)
	}
	return signed, nil
}

// ParseBearerToken validates signature, expiry, and signing method (HMAC
// only — this blocks the classic "alg: none" downgrade attack) and returns
// the claims.
func ParseBearerToken(tokenString, secret string) (*BearerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &BearerClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("parse bearer token: %w", err)
	}

	claims, ok := token.Claims.(*BearerClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid bearer token claims")
	}
	return claims, nil
}

// AnonymousClaims is the payload of a watercooler redirect token: which
// team the bearer may join, and nothing else. purpose distinguishes it from
// a bearer token sharing the same signing secret — without this check a
// bearer token would also pass signature verification here.
type AnonymousClaims struct {
	TeamID  uuid.UUID `json:"team_id"`
	Purpose string    `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateAnonymousToken signs a 10-minute, team-scoped redirect token.
func GenerateAnonymousToken(teamID uuid.UUID, secret string) (string, error) {
	now := time.Now()
	claims := AnonymousClaims{
		TeamID:  teamID,
		Purpose: anonymousPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AnonymousTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign anonymous token: %w", err)
	}
	return signed, nil
}

// ParseAnonymousToken validates signature, expiry, and purpose. A bearer
// token or an expired/foreign token is rejected here even if its signature
// checks out.
func ParseAnonymousToken(tokenString, secret string) (*AnonymousClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AnonymousClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("parse anonymous token: %w", err)
	}

	claims, ok := token.Claims.(*AnonymousClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid anonymous token claims")
	}
	if claims.Purpose != anonymousPurpose {
		return nil, fmt.Errorf("invalid token purpose: %s", claims.Purpose)
	}
	return claims, nil
}
