package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessiontrack/core/server"
)

var hello = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("hello"))
})

func waitListening(t *testing.T, srv *server.Server) string {
	t.Helper()
	var addr string
	require.Eventually(t, func() bool {
		addr = srv.Addr()
		_, port, err := net.SplitHostPort(addr)
		return err == nil && port != "0"
	}, 2*time.Second, 5*time.Millisecond)
	return addr
}

func TestServer_RunServesAndShutsDown(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0",
		server.WithShutdownTimeout(time.Second),
		server.WithReadTimeout(time.Second),
		server.WithWriteTimeout(time.Second),
		server.WithIdleTimeout(time.Second),
		server.WithMaxHeaderBytes(8<<10),
	)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, hello))

	addr := waitListening(t, srv)
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "hello", string(body))

	cancel()
	require.NoError(t, g.Wait())

	_, err = http.Get("http://" + addr + "/")
	assert.Error(t, err)
}

func TestServer_StartFailsOnBusyAddress(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := server.New(ln.Addr().String())
	err = srv.Start(context.Background(), hello)
	require.ErrorIs(t, err, server.ErrListen)
}

func TestServer_StartTwice(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx, hello) }()
	waitListening(t, srv)

	require.ErrorIs(t, srv.Start(ctx, hello), server.ErrServerAlreadyRunning)

	require.NoError(t, srv.Stop())
	require.NoError(t, <-done)
	require.NoError(t, srv.Stop(), "stopping a stopped server is a no-op")
}
