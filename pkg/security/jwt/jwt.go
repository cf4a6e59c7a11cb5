package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/auth"
)

var (
	ErrMissingSecret = errors.New("jwt: signing secret is empty")
	ErrMalformed     = errors.New("jwt: malformed token")
	ErrBadSignature  = errors.New("jwt: bad signature")
	ErrExpired       = errors.New("jwt: token expired")
	ErrInvalidIssuer = errors.New("jwt: unexpected issuer")
	ErrInvalid       = errors.New("jwt: invalid token")
)

// Claims carries the subject user id plus display fields for the frontend.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserID parses the subject.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Display are the optional non-identity claims embedded in a token.
type Display struct {
	Name  string
	Email string
}

// TokenService issues and verifies HS256 tokens with a process-wide secret.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of s reading time from now. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Generate implements auth.TokenGenerator with the default TTL.
func (s *TokenService) Generate(_ context.Context, user auth.User) (string, error) {
	return s.Issue(user.ID, Display{Name: user.Name, Email: user.Email}, s.ttl)
}

func (s *TokenService) Issue(subject uuid.UUID, display Display, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  display.Name,
		Email: display.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, issuer and expiry and returns the decoded claims.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer
	default:
		return ErrInvalid
	}
}
