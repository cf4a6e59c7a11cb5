package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const minPasswordLen = 6

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, email, password, name string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenGenerator
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenGenerator) AuthUseCase {
	return &authService{repo: repo, hasher: hasher, tokens: tokens, now: time.Now}
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, email, password, name string) (AuthResult, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateRegistration(email, password, name); err != nil {
		return AuthResult{}, err
	}

	// If user exists, fail fast; the unique index still guards the insert.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// unknown emails pay the same bcrypt cost as a wrong password
			s.hasher.Verify(password, s.fallbackHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

func validateRegistration(email, password, name string) error {
	if email == "" || password == "" || name == "" {
		return ValidationError("email, password and name are required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ValidationError("email is not a valid address")
	}
	if len(password) < minPasswordLen {
		return ValidationError("password must be at least 6 characters")
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}
