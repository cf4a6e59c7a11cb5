package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/meetups/api/http/presenter"
	"github.com/artem13815/meetups/pkg/auth"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
	logger  *slog.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type registerResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} registerResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "Invalid JSON payload")
	}

	result, err := h.useCase.Register(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		var verr auth.ValidationError
		switch {
		case errors.As(err, &verr):
			return presenter.Error(c, http.StatusBadRequest, verr.Error())
		case errors.Is(err, auth.ErrPasswordTooLong):
			return presenter.Error(c, http.StatusBadRequest, "Password must be at most 72 bytes")
		case errors.Is(err, auth.ErrEmailTaken):
			return presenter.Error(c, http.StatusConflict, "Email already registered")
		default:
			return internalError(c, h.logger, "register user", err)
		}
	}

	return presenter.JSON(c, http.StatusCreated, registerResponse{
		ID:        result.User.ID,
		Email:     result.User.Email,
		Name:      result.User.Name,
		CreatedAt: result.User.CreatedAt,
		Token:     result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} loginResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "Email and password are required")
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return presenter.Error(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return internalError(c, h.logger, "login", err)
	}

	return presenter.JSON(c, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}
