package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarylab/library-backend/internal/auth"
)

func Test_HashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", hash)

	assert.NoError(t, auth.VerifyPassword("secret123", hash))
	assert.Error(t, auth.VerifyPassword("wrong", hash))
}
