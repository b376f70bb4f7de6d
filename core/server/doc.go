// Package server wraps http.Server with synchronous listener binding, graceful
// shutdown and errgroup-friendly lifecycle management.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// Start binds the address before serving, so a port already in use surfaces as
// ErrListen from Start or Run instead of being logged in the background. When
// the context is canceled, Run shuts the server down within the configured
// shutdown timeout and returns nil.
//
// Config is loadable from SERVER_* environment variables. TLS is enabled when
// both SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE are set.
package server
