package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/integration/database/mongo"
)

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := mongo.New(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
}

func TestNewGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := mongo.New(ctx, mongo.Config{
		ConnectionURL:  "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100",
		ConnectTimeout: 200 * time.Millisecond,
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
	})
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}

func TestHealthcheckLive(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := mongo.New(ctx, mongo.Config{ConnectionURL: url, RetryAttempts: 1, MaxPoolSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	assert.NoError(t, mongo.Healthcheck(client)(ctx))
}
