// Package pg manages PostgreSQL pools with retry, goose migrations and health checking.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
// Packages that own their schema embed it and call MigrateFS:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	sub, _ := fs.Sub(migrations, "migrations")
//	err := pg.MigrateFS(ctx, pool, sub, "sessiontrack_migrations", log)
//
// # Configuration
//
//	PG_CONN_URL            (required)
//	PG_MAX_OPEN_CONNS      (default: 10)
//	PG_MAX_IDLE_CONNS      (default: 5)
//	PG_HEALTHCHECK_PERIOD  (default: 1m)
//	PG_MAX_CONN_IDLE_TIME  (default: 10m)
//	PG_MAX_CONN_LIFETIME   (default: 30m)
//	PG_RETRY_ATTEMPTS      (default: 3)
//	PG_RETRY_INTERVAL      (default: 5s)
//	PG_MIGRATIONS_PATH     (optional)
//	PG_MIGRATIONS_TABLE    (default: schema_migrations)
//
// # Error Classification
//
//	pg.IsNotFoundError(err)            // pgx.ErrNoRows
//	pg.IsDuplicateKeyError(err)        // unique_violation
//	pg.IsForeignKeyViolationError(err) // foreign_key_violation
//	pg.IsTxClosedError(err)            // pgx.ErrTxClosed
//
// # Transactions
//
// InTx begins a transaction, attaches it to the context and commits or rolls
// back depending on the callback's error. Stores read it back with TxFromContext,
// so every call made with that context joins the transaction:
//
//	err := pg.InTx(ctx, pool, func(ctx context.Context) error {
//		if _, err := store.FindOne(ctx, filter); err != nil {
//			return err
//		}
//		return store.InsertOne(ctx, rec)
//	})
package pg
