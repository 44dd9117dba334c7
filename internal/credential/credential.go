// Package credential derives and checks salted password hashes.
//
// Hashes are PBKDF2-HMAC-SHA1 with a fixed iteration count and output length,
// so stored hashes stay comparable byte-for-byte across releases.
package credential

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor.
	Iterations = 65536

	// KeyLength is the derived hash length in bytes (128 bits).
	KeyLength = 16

	// SaltLength is the size of freshly generated salts.
	SaltLength = 16
)

// NewSalt returns SaltLength bytes from the system CSPRNG.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Hash derives the stored hash for password under salt.
func Hash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha1.New)
}

// Verify recomputes the hash and compares it with want in constant time.
func Verify(password string, salt, want []byte) bool {
	if len(salt) == 0 || len(want) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(Hash(password, salt), want) == 1
}
