// @title         meetups API
// @version       1.0
// @description   Browse, create and register for meetups. Registration enforces capacity and rejects duplicates and past meetups.
// @BasePath      /api
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token: "Bearer <JWT>" or the bare JWT.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/artem13815/meetups/api/http"
	"github.com/artem13815/meetups/api/http/handlers"
	"github.com/artem13815/meetups/api/http/middleware"
	_ "github.com/artem13815/meetups/docs"
	"github.com/artem13815/meetups/migrations"
	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/config"
	"github.com/artem13815/meetups/pkg/health"
	"github.com/artem13815/meetups/pkg/health/checkers"
	"github.com/artem13815/meetups/pkg/logging"
	"github.com/artem13815/meetups/pkg/meetup"
	"github.com/artem13815/meetups/pkg/profile"
	"github.com/artem13815/meetups/pkg/registration"
	"github.com/artem13815/meetups/pkg/repository/memory"
	pgrepo "github.com/artem13815/meetups/pkg/repository/postgres"
	"github.com/artem13815/meetups/pkg/security/jwt"
	"github.com/artem13815/meetups/pkg/storage/postgres"
	redisstore "github.com/artem13815/meetups/pkg/storage/redis"
)

func main() {
	// Load configuration from env/.env
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	users         auth.UserRepository
	meetups       meetup.Repository
	registrations registration.Repository
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var (
		repos    repositories
		checks   []health.Checker
		limitSto fiber.Storage
	)

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		st := memory.NewStore()
		repos = repositories{users: st.Users(), meetups: st.Meetups(), registrations: st.Registrations()}
	default:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if cfg.MigrateOnStart {
			if err := migrate(ctx, pool, logger); err != nil {
				return err
			}
		}
		repos = repositories{
			users:         pgrepo.NewUserRepository(pool),
			meetups:       pgrepo.NewMeetupRepository(pool),
			registrations: pgrepo.NewRegistrationRepository(pool),
		}
		checks = append(checks, checkers.NewPostgresChecker(pool))
	}

	if cfg.RedisURL != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		limitSto = redisstore.NewStorage(client, "meetups:ratelimit:")
		checks = append(checks, checkers.NewRedisChecker(client))
	}

	tokens, err := jwt.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	if err != nil {
		return err
	}

	authUC := auth.NewAuthService(repos.users, auth.NewBcryptHasher(cfg.BcryptCost), tokens)
	meetupUC := meetup.NewService(repos.meetups)
	registrationUC := registration.NewService(repos.registrations)
	profileUC := profile.NewService(repos.users, repos.meetups)

	// JWT auth middleware for protected routes
	mwOpts := []jwt.Option{jwt.WithLogger(logger)}
	if cfg.AuthVerifyUser {
		mwOpts = append(mwOpts, jwt.WithUserLookup(authUC))
	}
	authMW := jwt.NewAuthMiddleware(tokens, mwOpts...)

	app := httpapi.NewApp(logger, cfg.CORSOrigins)
	httpapi.Register(app, httpapi.Handlers{
		Auth:          handlers.NewAuthHandler(authUC, logger),
		Health:        handlers.NewHealthHandler(health.NewService(checks...)),
		Meetups:       handlers.NewMeetupHandler(meetupUC, logger),
		Registrations: handlers.NewRegistrationHandler(registrationUC, logger),
		Profile:       handlers.NewProfileHandler(profileUC, logger),
	}, authMW, middleware.RateLimit(cfg.AuthRateLimit, limitSto))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port, "storage", cfg.Storage)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(pool, migrations.FS, logger.With("component", "migrate"))
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up(ctx)
}
