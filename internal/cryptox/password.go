// Package cryptox holds the password hashing primitive used by the identity
// service.
package cryptox

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is used whenever the configured bcrypt cost is unusable.
const DefaultCost = 10

// PasswordHasher is the one-way salted hash + verify primitive.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher hashes passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or DefaultCost when cost is
// outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: NormalizeCost(cost)}
}

// NormalizeCost clamps unusable cost values to DefaultCost.
func NormalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return DefaultCost
	}
	return cost
}

// Cost reports the cost factor in use.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns the bcrypt encoding of plaintext. bcrypt rejects inputs longer
// than 72 bytes; callers validate length beforehand.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. A malformed hash yields false.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
