package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/meetups/pkg/auth"
)

func newService(t *testing.T, secret string, now time.Time) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, "meetups-test", time.Hour)
	require.NoError(t, err)
	return s.WithClock(func() time.Time { return now })
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "x", time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newService(t, "secret", now)
	uid := uuid.New()

	tok, err := s.Issue(uid, Display{Name: "Alice", Email: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uid, got)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, now.Equal(claims.IssuedAt.Time))
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
}

func TestGenerateUsesDefaultTTL(t *testing.T) {
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newService(t, "secret", now)
	user := auth.User{ID: uuid.New(), Name: "Bob", Email: "b@x.com"}

	tok, err := s.Generate(context.Background(), user)
	require.NoError(t, err)
	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newService(t, "secret", issued)
	tok, err := s.Issue(uuid.New(), Display{}, time.Minute)
	require.NoError(t, err)

	_, err = s.WithClock(func() time.Time { return issued.Add(time.Minute + time.Second) }).Verify(tok)
	require.ErrorIs(t, err, ErrExpired)

	_, err = s.WithClock(func() time.Time { return issued.Add(30 * time.Second) }).Verify(tok)
	require.NoError(t, err)
}

func TestVerifyBadSignature(t *testing.T) {
	now := time.Now()
	tok, err := newService(t, "other-secret", now).Issue(uuid.New(), Display{}, time.Hour)
	require.NoError(t, err)

	_, err = newService(t, "secret", now).Verify(tok)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	s := newService(t, "secret", time.Now())
	for _, tok := range []string{"", "abc", "a.b", "not.a.jwt"} {
		_, err := s.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	s := newService(t, "secret", time.Now())
	tok, err := s.Issue(uuid.New(), Display{Name: "A"}, time.Hour)
	require.NoError(t, err)
	other, err := s.Issue(uuid.New(), Display{Name: "B"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = s.Verify(forged)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWrongIssuer(t *testing.T) {
	now := time.Now()
	foreign, err := NewTokenService("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	tok, err := foreign.Issue(uuid.New(), Display{}, time.Hour)
	require.NoError(t, err)

	_, err = newService(t, "secret", now).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidIssuer)
}
