package http

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/meetups/api/http/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Meetups       *handlers.MeetupHandler
	Registrations *handlers.RegistrationHandler
	Profile       *handlers.ProfileHandler
}

// Register wires all HTTP routes onto given Fiber app. authMW guards the
// bearer routes, authLimit throttles credential endpoints.
func Register(app *fiber.App, h Handlers, authMW, authLimit fiber.Handler) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", h.Health.Health)
	api.Get("/ready", h.Health.Ready)

	a := api.Group("/auth", authLimit)
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)

	m := api.Group("/meetups")
	m.Get("/", h.Meetups.List)
	m.Get("/:id", h.Meetups.Get)
	m.Post("/", authMW, h.Meetups.Create)
	m.Put("/:id", authMW, h.Meetups.Update)
	m.Delete("/:id", authMW, h.Meetups.Delete)
	m.Post("/:id/register", authMW, h.Registrations.Register)
	m.Delete("/:id/register", authMW, h.Registrations.Withdraw)

	api.Get("/profile", authMW, h.Profile.Get)

	app.Get("/swagger/*", swagger.HandlerDefault)
}
