package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/artem13815/meetups/api/http/middleware"
	"github.com/artem13815/meetups/api/http/presenter"
)

// NewApp builds the fiber app with the global middleware chain. Errors that
// reach fiber are rendered as {"error": ...}.
func NewApp(logger *slog.Logger, corsOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "meetups-api",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return presenter.Error(c, fe.Code, fe.Message)
			}
			return presenter.Error(c, fiber.StatusInternalServerError, "Internal server error")
		},
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			logger.Error("panic recovered", "panic", e, "path", c.Path())
		},
	}))
	if len(corsOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(corsOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		}))
	}
	return app
}
