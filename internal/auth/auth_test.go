package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword(0)
		require.NoError(t, err)
		assert.Len(t, pw, PasswordLength)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(PasswordAlphabet, r), "unexpected rune %q", r)
		}
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 45)

	pw, err := GeneratePassword(24)
	require.NoError(t, err)
	assert.Len(t, pw, 24)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!Pw")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!Pw", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!Pw"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "s3cret!Pw"), ErrInvalidCredentials)
}
