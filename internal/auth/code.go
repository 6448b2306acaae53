package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is the default cost for bcrypt hashing.
	bcryptCost = 10
)

// ErrCodeTooLong is returned when the admin code exceeds bcrypt's 72 byte input limit.
var ErrCodeTooLong = errors.New("admin code longer than 72 bytes")

// CodeVerifier checks candidate admin codes against a single shared secret.
// Only the bcrypt hash of the secret is kept in memory.
type CodeVerifier struct {
	hash []byte
}

// NewCodeVerifier hashes code. An empty code yields a verifier that rejects
// every candidate.
func NewCodeVerifier(code string) (*CodeVerifier, error) {
	if code == "" {
		return &CodeVerifier{}, nil
	}
	if len(code) > 72 {
		return nil, ErrCodeTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin code: %w", err)
	}
	return &CodeVerifier{hash: hash}, nil
}

// Enabled reports whether an admin code is configured.
func (v *CodeVerifier) Enabled() bool {
	return len(v.hash) > 0
}

// Verify reports whether candidate matches the configured code exactly.
func (v *CodeVerifier) Verify(candidate string) bool {
	if !v.Enabled() || candidate == "" || len(candidate) > 72 {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(candidate)) == nil
}
