package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/meetups/api/http/presenter"
	"github.com/artem13815/meetups/pkg/meetup"
	"github.com/artem13815/meetups/pkg/registration"
)

type RegistrationHandler struct {
	uc     registration.UseCase
	logger *slog.Logger
}

func NewRegistrationHandler(uc registration.UseCase, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{uc: uc, logger: logger}
}

// @Summary  Register for a meetup
// @Tags     registrations
// @Produce  json
// @Param    id path string true "meetup id (UUID)"
// @Security BearerAuth
// @Success  201 {object} registration.Registration
// @Failure  400 {object} presenter.ErrorResponse "full, past or already registered"
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /meetups/{id}/register [post]
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	uid, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseMeetupID(c)
	if !ok {
		return invalidMeetupID(c)
	}
	reg, err := h.uc.Register(c.UserContext(), uid, id)
	if err != nil {
		return h.fail(c, "register for meetup", err)
	}
	return presenter.JSON(c, http.StatusCreated, reg)
}

// @Summary  Withdraw from a meetup
// @Tags     registrations
// @Produce  json
// @Param    id path string true "meetup id (UUID)"
// @Security BearerAuth
// @Success  200 {object} registration.Registration
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /meetups/{id}/register [delete]
func (h *RegistrationHandler) Withdraw(c *fiber.Ctx) error {
	uid, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseMeetupID(c)
	if !ok {
		return invalidMeetupID(c)
	}
	reg, err := h.uc.Withdraw(c.UserContext(), uid, id)
	if err != nil {
		return h.fail(c, "withdraw from meetup", err)
	}
	return presenter.JSON(c, http.StatusOK, reg)
}

func (h *RegistrationHandler) fail(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, meetup.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "Meetup not found")
	case errors.Is(err, registration.ErrMeetupFull):
		return presenter.Error(c, http.StatusBadRequest, "Meetup is full")
	case errors.Is(err, registration.ErrAlreadyRegistered):
		return presenter.Error(c, http.StatusBadRequest, "Already registered for this meetup")
	case errors.Is(err, registration.ErrMeetupExpired):
		return presenter.Error(c, http.StatusBadRequest, "Registration is closed for past meetups")
	case errors.Is(err, registration.ErrNotRegistered):
		return presenter.Error(c, http.StatusNotFound, "Not registered for this meetup")
	case errors.Is(err, registration.ErrUnknownUser):
		return unauthorized(c)
	default:
		return internalError(c, h.logger, op, err)
	}
}
