package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		hash, err := HashToken("0123456789abcdef", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, "0123456789abcdef", hash)
		assert.NoError(t, CheckToken("0123456789abcdef", hash))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := HashToken("short", bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrTokenTooShort)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := HashToken(strings.Repeat("a", 73), bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrTokenTooLong)
	})
}

func TestCheckToken(t *testing.T) {
	hash, err := HashToken("correct-horse-battery", bcrypt.MinCost)
	require.NoError(t, err)

	assert.ErrorIs(t, CheckToken("wrong-horse-battery", hash), ErrInvalidToken)
	assert.Error(t, CheckToken("correct-horse-battery", "not-a-hash"))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	hash, err := HashToken(a, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, CheckToken(a, hash))
}
