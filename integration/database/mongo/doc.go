// Package mongo initializes MongoDB clients with retry and health checking.
//
// New retries the connect and ping sequence to ride out cold starts and short
// network interruptions. Startup failures are returned, never swallowed:
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//
// # Configuration
//
//	MONGODB_URL                 (required)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
//
// # Health Checking
//
//	health.Check{Name: "mongo", Fn: mongo.Healthcheck(client)}
package mongo
