package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"github.com/dmitrymomot/sessiontrack/core/logger"
)

// Migrate applies the SQL migrations found in cfg.MigrationsPath.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	if cfg.MigrationsPath == "" {
		return ErrMigrationPathNotProvided
	}
	if info, err := os.Stat(cfg.MigrationsPath); err != nil || !info.IsDir() {
		return errors.Join(ErrMigrationsDirNotFound, err)
	}
	return MigrateFS(ctx, pool, os.DirFS(cfg.MigrationsPath), cfg.MigrationsTable, log)
}

// MigrateFS applies the SQL migrations at the root of fsys, recording versions in table.
// Packages that own their schema pass an embed.FS.
func MigrateFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, table string, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if table == "" {
		table = "schema_migrations"
	}

	// goose needs database/sql; the adapter shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	provider, err := goose.NewProvider("", db, fsys, goose.WithStore(store))
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			logger.Component("pg"),
			logger.Version(r.Source.Path),
			logger.Duration(r.Duration),
		)
	}
	return nil
}
