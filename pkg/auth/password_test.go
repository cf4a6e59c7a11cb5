package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, pw := range []string{"password123", "p", "ünïcødé pass", strings.Repeat("x", 72)} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed)
		assert.True(t, h.Verify(pw, hashed), pw)
		assert.False(t, h.Verify(pw+"!", hashed), pw)
	}
}

func TestBcryptHasherSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("password123")
	require.NoError(t, err)
	b, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, bad := range []string{"", "plain", "$2a$10$short", "$9z$10$abcdefghijklmnopqrstuv"} {
		assert.False(t, h.Verify("password123", bad), bad)
	}
}

func TestBcryptHasherTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("x", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
