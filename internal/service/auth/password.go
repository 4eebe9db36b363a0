package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher defines the interface for hashing passwords and comparing
// them against stored hashes.
type PasswordHasher interface {
	// Hash derives a salted one-way hash from the plaintext password.
	// The same plaintext yields a different hash on every call because
	// bcrypt embeds a random salt.
	Hash(ctx context.Context, password string) (string, error)

	// Compare compares a hashed password with its possible plaintext
	// equivalent. Returns nil on match and ErrPasswordMismatch otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptHasher implements PasswordHasher using bcrypt with a configurable
// work factor. Hashing is deliberately slow, so concurrent hash operations
// are bounded by a semaphore sized to the CPU count; without the bound a
// burst of registrations could monopolize every core.
type BcryptHasher struct {
	cost int
	sem  chan struct{}
}

// NewBcryptHasher creates a BcryptHasher with the given cost. Costs outside
// bcrypt's supported range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{
		cost: cost,
		sem:  make(chan struct{}, runtime.GOMAXPROCS(0)),
	}
}

// Hash implements PasswordHasher.Hash. It blocks while all hashing slots are
// busy and honors context cancellation while waiting.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare implements PasswordHasher.Compare using bcrypt.
func (h *BcryptHasher) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
