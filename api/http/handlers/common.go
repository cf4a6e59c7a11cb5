package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/meetups/api/http/presenter"
	"github.com/artem13815/meetups/pkg/security/jwt"
)

const msgInternal = "Internal server error"

// internalError logs err with the request context and answers with a
// generic 500.
func internalError(c *fiber.Ctx, logger *slog.Logger, op string, err error) error {
	logger.ErrorContext(c.UserContext(), op+" failed",
		"error", err,
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
	)
	return presenter.Error(c, http.StatusInternalServerError, msgInternal)
}

// callerID is the authenticated user set by the auth middleware.
func callerID(c *fiber.Ctx) (uuid.UUID, bool) {
	return jwt.UserID(c)
}

func unauthorized(c *fiber.Ctx) error {
	return presenter.Error(c, http.StatusUnauthorized, "Invalid token")
}

func parseMeetupID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func invalidMeetupID(c *fiber.Ctx) error {
	return presenter.Error(c, http.StatusBadRequest, "Invalid meetup id")
}
