package jwt

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/auth"
)

const (
	localUserID   = "userId"
	localUserUUID = "userUUID"
)

// Verifier decodes a bearer token.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// UserLookup resolves a subject to a stored user.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (auth.User, error)
}

type middleware struct {
	verifier Verifier
	users    UserLookup
	logger   *slog.Logger
}

type Option func(*middleware)

// WithUserLookup makes the gate reject tokens whose subject no longer exists.
func WithUserLookup(users UserLookup) Option { return func(m *middleware) { m.users = users } }

func WithLogger(l *slog.Logger) Option { return func(m *middleware) { m.logger = l } }

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// On success sets user id (subject) into c.Locals("userId").
func NewAuthMiddleware(verifier Verifier, opts ...Option) fiber.Handler {
	m := &middleware{verifier: verifier, logger: slog.Default()}
	for _, o := range opts {
		o(m)
	}
	return m.handle
}

func (m *middleware) handle(c *fiber.Ctx) error {
	tokenStr := bearerToken(c.Get(fiber.HeaderAuthorization))
	if tokenStr == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}
	claims, err := m.verifier.Verify(tokenStr)
	if err != nil {
		m.logger.Debug("token rejected", "reason", err.Error(), "path", c.Path())
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	uid, err := claims.UserID()
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if m.users != nil {
		if _, err := m.users.GetUser(c.Context(), uid); err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				m.logger.Info("token subject no longer exists", "user_id", uid.String())
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
			}
			m.logger.Error("auth user lookup failed", "error", err)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
	}
	c.Locals(localUserID, claims.Subject)
	c.Locals(localUserUUID, uid)
	return c.Next()
}

// Support both "Bearer <token>" and "<token>" (no prefix).
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, "Bearer") {
		return ""
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok {
		if strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
		// Fallback: treat entire header as token (for non-standard clients)
		return header
	}
	return header
}

// UserID returns the caller resolved by the middleware.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	uid, ok := c.Locals(localUserUUID).(uuid.UUID)
	return uid, ok
}
