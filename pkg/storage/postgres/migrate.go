package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies the embedded goose migrations through a database/sql
// handle borrowed from the pgx pool.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	logger   *slog.Logger
}

func NewMigrator(pool *pgxpool.Pool, migrations fs.FS, logger *slog.Logger) (*Migrator, error) {
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{db: db, provider: provider, logger: logger}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		m.logResult(r)
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	if len(results) == 0 {
		m.logger.Info("schema up to date")
	}
	return nil
}

// Down rolls back the n most recent migrations.
func (m *Migrator) Down(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		r, err := m.provider.Down(ctx)
		if r != nil {
			m.logResult(r)
		}
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	}
	return nil
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

// MigrationState is one row of Status output.
type MigrationState struct {
	Version int64
	Path    string
	Applied bool
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	st, err := m.provider.Status(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationState, 0, len(st))
	for _, s := range st {
		out = append(out, MigrationState{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Close releases the sql.DB wrapper; the underlying pool stays open.
func (m *Migrator) Close() error { return m.db.Close() }

func (m *Migrator) logResult(r *goose.MigrationResult) {
	attrs := []any{
		slog.Int64("version", r.Source.Version),
		slog.String("file", r.Source.Path),
		slog.String("direction", r.Direction),
		slog.Duration("took", r.Duration),
	}
	if r.Error != nil {
		m.logger.Error("migration failed", append(attrs, slog.Any("err", r.Error))...)
		return
	}
	m.logger.Info("migration applied", attrs...)
}
