// Package redis initializes go-redis clients with URL validation, retry and
// health checking.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// # Configuration
//
//	REDIS_URL              (required, default redis://localhost:6379/0)
//	REDIS_RETRY_ATTEMPTS   (default: 3)
//	REDIS_RETRY_INTERVAL   (default: 5s, doubled after every failed attempt)
//	REDIS_CONNECT_TIMEOUT  (default: 30s, bounds the whole retry sequence)
//	REDIS_SCAN_BATCH_SIZE  (default: 1000, SCAN COUNT hint for key iteration)
//
// Only redis:// and rediss:// (TLS) schemes are accepted.
//
// # Errors
//
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: Redis did not answer within the retry budget
//   - ErrHealthcheckFailed: a health check ping failed
package redis
