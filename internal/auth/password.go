// Package auth — password hashing utilities.
//
// Passwords are stored as PBKDF2-HMAC-SHA512 digests with a per-user random
// salt kept in its own column. The parameters below are part of the stored
// format: changing any of them makes every existing hash unverifiable, so they
// are constants rather than configuration.
//
//	key = PBKDF2(SHA-512, password, salt, 50_000 iterations, 64 bytes)
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor for stored passwords.
	Iterations = 50_000
	// KeyLength is the size in bytes of every stored password hash.
	KeyLength = 64
	// SaltLength is the size in bytes of the per-user salt.
	SaltLength = 16
)

// PasswordHasher derives and verifies password hashes.
//
// It's a struct (not free functions) so that the iteration count can be
// lowered in tests of other packages. Production code must use
// NewPasswordHasher.
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher returns a hasher with the stored-format parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{iterations: Iterations}
}

// NewPasswordHasherForTest returns a hasher with a custom iteration count.
// Hashes it produces are NOT compatible with NewPasswordHasher.
func NewPasswordHasherForTest(iterations int) *PasswordHasher {
	return &PasswordHasher{iterations: iterations}
}

// GenerateSalt returns SaltLength bytes from the system CSPRNG.
func (h *PasswordHasher) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("auth: generating salt: %w", err)
	}
	return salt, nil
}

// Hash derives the KeyLength-byte hash of password with salt. The result is
// deterministic for identical inputs.
//
// An empty salt is refused: it would silently produce unsalted hashes.
func (h *PasswordHasher) Hash(password string, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("auth: hashing password: empty salt")
	}
	if h.iterations <= 0 {
		return nil, fmt.Errorf("auth: hashing password: invalid iteration count %d", h.iterations)
	}
	return pbkdf2.Key([]byte(password), salt, h.iterations, KeyLength, sha512.New), nil
}

// Verify reports whether password hashes to stored under salt.
//
// A non-nil error means hashing itself failed and must not be read as a
// mismatch.
func (h *PasswordHasher) Verify(password string, salt, stored []byte) (bool, error) {
	computed, err := h.Hash(password, salt)
	if err != nil {
		return false, err
	}
	return Equal(computed, stored), nil
}

// Equal compares a freshly computed hash with a stored one in constant time.
//
// When the lengths differ the computed value is compared with itself so the
// time spent depends only on len(computed), then false is returned.
func Equal(computed, stored []byte) bool {
	if len(computed) != len(stored) {
		subtle.ConstantTimeCompare(computed, computed)
		return false
	}
	return subtle.ConstantTimeCompare(computed, stored) == 1
}
