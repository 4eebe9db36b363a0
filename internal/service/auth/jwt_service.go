package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing bearer authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed token carrying the username claim.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, username string) (string, error)

	// ValidateToken verifies the token's signature and time claims and
	// extracts the claims in a single operation. Claims are never exposed
	// from a token that failed verification.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified claims extracted from a bearer token.
type Claims struct {
	// Username identifies the user the token was issued for. It becomes
	// the actor for all item operations.
	Username string `json:"username,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
