package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/meetups/api/http/presenter"
	"github.com/artem13815/meetups/pkg/meetup"
)

type MeetupHandler struct {
	uc     meetup.UseCase
	logger *slog.Logger
}

func NewMeetupHandler(uc meetup.UseCase, logger *slog.Logger) *MeetupHandler {
	return &MeetupHandler{uc: uc, logger: logger}
}

// @Summary     List meetups
// @Description Upcoming meetups ordered by date. A search term or include_past also returns past ones.
// @Tags        meetups
// @Produce     json
// @Param       q            query string false "text in title or description"
// @Param       location     query string false "location substring"
// @Param       category     query string false "Technology, Nature, Art or Food"
// @Param       include_past query bool   false "include meetups that already started"
// @Param       limit        query int    false "page size (max 200)"
// @Param       offset       query int    false "page offset"
// @Success     200 {array}  meetup.Meetup
// @Failure     400 {object} presenter.ErrorResponse
// @Router      /meetups [get]
func (h *MeetupHandler) List(c *fiber.Ctx) error {
	f := meetup.Filter{
		Query:       c.Query("q"),
		Location:    c.Query("location"),
		IncludePast: parseBool(c.Query("include_past")),
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		cat, ok := meetup.ParseCategory(raw)
		if !ok {
			return presenter.Error(c, http.StatusBadRequest, "Unknown category")
		}
		f.Category = cat
	}
	f.Limit, f.Offset = parseLimitOffset(c, 50)

	ms, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return internalError(c, h.logger, "list meetups", err)
	}
	return presenter.JSON(c, http.StatusOK, ms)
}

// @Summary Get meetup with participants
// @Tags    meetups
// @Produce json
// @Param   id path string true "meetup id (UUID)"
// @Success 200 {object} meetup.Meetup
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /meetups/{id} [get]
func (h *MeetupHandler) Get(c *fiber.Ctx) error {
	id, ok := parseMeetupID(c)
	if !ok {
		return invalidMeetupID(c)
	}
	m, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "get meetup", err)
	}
	return presenter.JSON(c, http.StatusOK, m)
}

// @Summary  Create meetup
// @Tags     meetups
// @Accept   json
// @Produce  json
// @Param    input body meetup.Input true "meetup"
// @Security BearerAuth
// @Success  201 {object} meetup.Meetup
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /meetups [post]
func (h *MeetupHandler) Create(c *fiber.Ctx) error {
	uid, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var in meetup.Input
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	m, err := h.uc.Create(c.UserContext(), uid, in)
	if err != nil {
		return h.fail(c, "create meetup", err)
	}
	return presenter.JSON(c, http.StatusCreated, m)
}

// @Summary  Update meetup
// @Tags     meetups
// @Accept   json
// @Produce  json
// @Param    id    path string       true "meetup id (UUID)"
// @Param    input body meetup.Input true "meetup"
// @Security BearerAuth
// @Success  200 {object} meetup.Meetup
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  403 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /meetups/{id} [put]
func (h *MeetupHandler) Update(c *fiber.Ctx) error {
	uid, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseMeetupID(c)
	if !ok {
		return invalidMeetupID(c)
	}
	var in meetup.Input
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	m, err := h.uc.Update(c.UserContext(), uid, id, in)
	if err != nil {
		return h.fail(c, "update meetup", err)
	}
	return presenter.JSON(c, http.StatusOK, m)
}

// @Summary  Delete meetup
// @Tags     meetups
// @Param    id path string true "meetup id (UUID)"
// @Security BearerAuth
// @Success  204
// @Failure  403 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /meetups/{id} [delete]
func (h *MeetupHandler) Delete(c *fiber.Ctx) error {
	uid, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseMeetupID(c)
	if !ok {
		return invalidMeetupID(c)
	}
	if err := h.uc.Delete(c.UserContext(), uid, id); err != nil {
		return h.fail(c, "delete meetup", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *MeetupHandler) fail(c *fiber.Ctx, op string, err error) error {
	var verr meetup.ValidationError
	switch {
	case errors.As(err, &verr):
		return presenter.Error(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, meetup.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "Meetup not found")
	case errors.Is(err, meetup.ErrForbidden):
		return presenter.Error(c, http.StatusForbidden, "Only the host can change this meetup")
	case errors.Is(err, meetup.ErrCapacityBelowAttendees):
		return presenter.Error(c, http.StatusBadRequest, "max_capacity cannot be lower than the number of registered attendees")
	default:
		return internalError(c, h.logger, op, err)
	}
}
