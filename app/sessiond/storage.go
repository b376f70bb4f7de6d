package sessiond

import (
	"context"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessiontrack/core/config"
	"github.com/dmitrymomot/sessiontrack/core/health"
	"github.com/dmitrymomot/sessiontrack/core/logger"
	"github.com/dmitrymomot/sessiontrack/core/session"
	"github.com/dmitrymomot/sessiontrack/integration/database/mongo"
	"github.com/dmitrymomot/sessiontrack/integration/database/pg"
	"github.com/dmitrymomot/sessiontrack/integration/database/redis"
	"github.com/dmitrymomot/sessiontrack/integration/sessionstore/mongostore"
	"github.com/dmitrymomot/sessiontrack/integration/sessionstore/pgstore"
	"github.com/dmitrymomot/sessiontrack/integration/sessionstore/redisstore"
)

// backend holds the store, the optional distributed locker and what it takes to check and close them.
type backend struct {
	store   session.Store
	locker  session.Locker
	checks  []health.Check
	closers []func(context.Context) error

	redis      *goredis.Client
	redisBatch int
}

func (b *backend) close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// openBackend connects the configured store. Any failure is fatal and
// releases whatever was opened before it.
func openBackend(ctx context.Context, cfg Config, log *slog.Logger) (_ *backend, err error) {
	b := &backend{}
	defer func() {
		if err != nil {
			_ = b.close(context.WithoutCancel(ctx))
		}
	}()

	switch cfg.Store {
	case StoreMemory:
		b.store = session.NewMemoryStore()
	case StoreMongo:
		if err := b.openMongo(ctx, cfg); err != nil {
			return nil, err
		}
	case StorePostgres:
		if err := b.openPostgres(ctx, log); err != nil {
			return nil, err
		}
	case StoreRedis:
		client, err := b.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		b.store = redisstore.New(client, redisstore.WithPrefix(cfg.RedisPrefix), redisstore.WithBatchSize(b.redisBatch))
	default:
		return nil, ErrInvalidConfig
	}

	if cfg.Locker == LockerRedis {
		client, err := b.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		b.locker = redisstore.NewLocker(client, redisstore.WithLockPrefix(cfg.RedisPrefix))
	}

	log.InfoContext(ctx, "session backend ready",
		logger.Component("storage"),
		slog.String("store", cfg.Store),
		slog.String("locker", cfg.Locker),
	)
	return b, nil
}

func (b *backend) openMongo(ctx context.Context, cfg Config) error {
	var mcfg mongo.Config
	if err := config.Load(&mcfg); err != nil {
		return err
	}
	client, err := mongo.New(ctx, mcfg)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, client.Disconnect)
	b.checks = append(b.checks, health.Check{Name: "mongo", Fn: mongo.Healthcheck(client)})

	store := mongostore.New(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	b.store = store
	return nil
}

func (b *backend) openPostgres(ctx context.Context, log *slog.Logger) error {
	var pcfg pg.Config
	if err := config.Load(&pcfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pcfg)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func(context.Context) error {
		pool.Close()
		return nil
	})
	b.checks = append(b.checks, health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})

	if err := pgstore.Migrate(ctx, pool, log); err != nil {
		return err
	}
	b.store = pgstore.New(pool)
	return nil
}

// redisClient connects once and is shared by the store and the locker.
func (b *backend) redisClient(ctx context.Context) (*goredis.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}
	var rcfg redis.Config
	if err := config.Load(&rcfg); err != nil {
		return nil, err
	}
	client, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return nil, err
	}
	b.redis = client
	b.redisBatch = rcfg.ScanBatchSize
	b.closers = append(b.closers, func(context.Context) error { return client.Close() })
	b.checks = append(b.checks, health.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	return client, nil
}
