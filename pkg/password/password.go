package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no option overrides it.
const DefaultCost = 12

var ErrInvalidCost = errors.New("password: bcrypt cost out of range")

// Hasher produces and checks bcrypt password hashes.
type Hasher struct {
	cost int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost overrides the bcrypt cost factor. Values outside the range
// accepted by bcrypt make NewHasher panic.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		h.cost = cost
	}
}

// NewHasher creates a bcrypt hasher with DefaultCost.
func NewHasher(opts ...Option) *Hasher {
	h := &Hasher{cost: DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		panic(fmt.Errorf("%w: %d", ErrInvalidCost, h.cost))
	}
	return h
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash.
// A malformed hash is reported as a mismatch.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Cost returns the configured bcrypt cost.
func (h *Hasher) Cost() int {
	return h.cost
}
