package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/integration/database/pg"
)

func TestConnectConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigratePathErrors(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, pg.Migrate(context.Background(), nil, pg.Config{}, nil), pg.ErrMigrationPathNotProvided)
	assert.ErrorIs(t,
		pg.Migrate(context.Background(), nil, pg.Config{MigrationsPath: t.TempDir() + "/missing"}, nil),
		pg.ErrMigrationsDirNotFound,
	)
}

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(fk))
	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("select: %w", pgx.ErrNoRows)))
	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	assert.False(t, pg.IsDuplicateKeyError(errors.New("plain")))
}

func TestTxContext(t *testing.T) {
	t.Parallel()

	_, ok := pg.TxFromContext(context.Background())
	assert.False(t, ok)

	ctx := pg.WithTx(context.Background(), nil)
	_, ok = pg.TxFromContext(ctx)
	require.False(t, ok)
}

type failingBeginner struct{ err error }

func (b failingBeginner) Begin(context.Context) (pgx.Tx, error) { return nil, b.err }

func TestInTxBeginFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	called := false
	err := pg.InTx(context.Background(), failingBeginner{err: boom}, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, called, "fn never runs without a transaction")
}
