package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewOpaqueID()
		assert.True(t, ValidOpaqueID(id))
		assert.False(t, seen[id], "ids must not repeat")
		seen[id] = true
	}
}

func TestValidOpaqueID(t *testing.T) {
	assert.False(t, ValidOpaqueID(""))
	assert.False(t, ValidOpaqueID("42"))
	assert.False(t, ValidOpaqueID("not-a-uuid"))
	assert.True(t, ValidOpaqueID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
}

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, VerifySecret("secret123", hash))
	assert.False(t, VerifySecret("wrong", hash))
	assert.False(t, VerifySecret("", hash))
}

func TestVerifySecretMalformedHash(t *testing.T) {
	// A malformed hash is a mismatch, never a panic.
	assert.False(t, VerifySecret("secret123", ""))
	assert.False(t, VerifySecret("secret123", "not-a-bcrypt-hash"))
}

func TestHashSecretSalted(t *testing.T) {
	h1, err := HashSecret("secret123")
	require.NoError(t, err)
	h2, err := HashSecret("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "bcrypt must salt each hash")
}
