package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/meetups/api/http/presenter"
	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/profile"
)

type ProfileHandler struct {
	uc     profile.UseCase
	logger *slog.Logger
}

func NewProfileHandler(uc profile.UseCase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: logger}
}

// @Summary  Caller's profile
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} profile.Profile
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	uid, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	p, err := h.uc.Get(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "User not found")
		}
		return internalError(c, h.logger, "load profile", err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}
