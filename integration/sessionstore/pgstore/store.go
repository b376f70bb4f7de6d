// Package pgstore keeps session records in a PostgreSQL table.
//
// The schema ships as an embedded goose migration; Migrate applies it.
// A partial unique index on (email, nickname) WHERE status = 'Active'
// enforces one active session per identity.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessiontrack/core/session"
	"github.com/dmitrymomot/sessiontrack/integration/database/pg"
)

// MigrationsTable records applied schema versions.
const MigrationsTable = "sessiontrack_migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	return pg.MigrateFS(ctx, pool, sub, MigrationsTable, log)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements session.Store over a pgx pool.
// A transaction attached with pg.WithTx is used instead of the pool.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ session.Store      = (*Store)(nil)
	_ session.Transactor = (*Store)(nil)
)

// New wraps pool. Run Migrate first.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) db(ctx context.Context) querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// InTx runs fn in a transaction. Begin and commit failures are reported as
// session.ErrStorageUnavailable; an error from fn is returned as is.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var fnErr error
	err := pg.InTx(ctx, s.pool, func(ctx context.Context) error {
		fnErr = fn(ctx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storageError(err)
}

func (s *Store) FindOne(ctx context.Context, filter session.Filter) (session.Record, error) {
	q, args := selectQuery(filter, true)
	rec, err := scanRecord(s.db(ctx).QueryRow(ctx, q, args...))
	if pg.IsNotFoundError(err) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, storageError(err)
	}
	return rec, nil
}

func (s *Store) InsertOne(ctx context.Context, rec session.Record) error {
	_, err := s.db(ctx).Exec(ctx,
		"INSERT INTO sessions ("+columns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		rec.SessionID, rec.Identity.Email, rec.Identity.Nickname, rec.DeviceFingerprint,
		rec.ClientAddress, rec.Server.Address, rec.Server.Hardware,
		rec.CreatedAt, rec.LastAccessed, rec.InactiveSeconds, rec.Status.String(),
	)
	return storageError(err)
}

func (s *Store) UpdateOne(ctx context.Context, filter session.Filter, patch session.Patch) (int64, error) {
	if patch.IsEmpty() {
		q, args := selectQuery(filter, true)
		_, err := scanRecord(s.db(ctx).QueryRow(ctx, q, args...))
		if pg.IsNotFoundError(err) {
			return 0, nil
		}
		if err != nil {
			return 0, storageError(err)
		}
		return 1, nil
	}

	q, args := updateQuery(filter, patch)
	tag, err := s.db(ctx).Exec(ctx, q, args...)
	if err != nil {
		return 0, storageError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Find(ctx context.Context, filter session.Filter) ([]session.Record, error) {
	q, args := selectQuery(filter, false)
	rows, err := s.db(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, storageError(err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (session.Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, storageError(err)
	}
	return recs, nil
}

func (s *Store) DeleteMany(ctx context.Context, filter session.Filter) (int64, error) {
	q, args := deleteQuery(filter)
	tag, err := s.db(ctx).Exec(ctx, q, args...)
	if err != nil {
		return 0, storageError(err)
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (session.Record, error) {
	var (
		rec    session.Record
		status string
	)
	err := row.Scan(
		&rec.SessionID, &rec.Identity.Email, &rec.Identity.Nickname, &rec.DeviceFingerprint,
		&rec.ClientAddress, &rec.Server.Address, &rec.Server.Hardware,
		&rec.CreatedAt, &rec.LastAccessed, &rec.InactiveSeconds, &status,
	)
	if err != nil {
		return session.Record{}, err
	}
	rec.Status = session.Status(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.LastAccessed = rec.LastAccessed.UTC()
	return rec, nil
}

func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsDuplicateKeyError(err):
		return errors.Join(session.ErrDuplicate, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Join(session.ErrStorageUnavailable, err)
	}
}
