package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/artem13815/meetups/migrations"
	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/config"
	"github.com/artem13815/meetups/pkg/logging"
	"github.com/artem13815/meetups/pkg/meetup"
	pgrepo "github.com/artem13815/meetups/pkg/repository/postgres"
	"github.com/artem13815/meetups/pkg/security/jwt"
	"github.com/artem13815/meetups/pkg/storage/postgres"
)

const (
	hostEmail    = "host@meetups.local"
	hostName     = "Meetup Host"
	hostPassword = "password123"
)

type demoMeetup struct {
	title, description, location string
	in                           time.Duration
	capacity                     int
	category                     meetup.Category
}

var demo = []demoMeetup{
	{"React Meetup", "Hooks, Zustand & RTK", "Online", 3 * 24 * time.Hour, 50, meetup.CategoryTechnology},
	{"DevOps Night", "CI/CD for real", "Stockholm HQ", 10 * 24 * time.Hour, 40, meetup.CategoryTechnology},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := seed(context.Background(), cfg, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete")
}

func seed(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Storage != config.StoragePostgres {
		return errors.New("seeding needs STORAGE=postgres")
	}
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	err = m.Up(ctx)
	_ = m.Close()
	if err != nil {
		return err
	}

	tokens, err := jwt.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, time.Minute)
	if err != nil {
		return err
	}
	users := pgrepo.NewUserRepository(pool)
	meetups := pgrepo.NewMeetupRepository(pool)
	authUC := auth.NewAuthService(users, auth.NewBcryptHasher(cfg.BcryptCost), tokens)
	meetupUC := meetup.NewService(meetups)

	host, err := users.GetByEmail(ctx, hostEmail)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		res, err := authUC.Register(ctx, hostEmail, hostPassword, hostName)
		if err != nil {
			return err
		}
		host = res.User
		logger.Info("created demo host", "email", hostEmail)
	case err != nil:
		return err
	}

	existing, err := meetups.ListByHost(ctx, host.ID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, e := range existing {
		have[e.Title] = true
	}

	now := time.Now().UTC()
	for _, d := range demo {
		if have[d.title] {
			logger.Info("meetup already seeded", "title", d.title)
			continue
		}
		created, err := meetupUC.Create(ctx, host.ID, meetup.Input{
			Title:       d.title,
			Description: d.description,
			DateTime:    now.Add(d.in).Format(time.RFC3339),
			Location:    d.location,
			MaxCapacity: d.capacity,
			Category:    string(d.category),
		})
		if err != nil {
			return err
		}
		logger.Info("seeded meetup", "id", created.ID.String(), "title", created.Title)
	}
	return nil
}
