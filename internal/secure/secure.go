// Package secure generates opaque external identifiers and handles share
// password hashing.
package secure

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewOpaqueID returns a non-sequential identifier safe to expose in public
// URLs. It carries no relation to internal numeric ids or creation order.
func NewOpaqueID() string {
	return uuid.NewString()
}

// ValidOpaqueID reports whether s is a well-formed opaque id.
func ValidOpaqueID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// HashSecret produces a salted bcrypt hash of plaintext.
func HashSecret(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret checks plaintext against a stored hash. A malformed hash is
// treated as a mismatch, not an error.
func VerifySecret(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
