package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/sessiontrack/core/logger"
)

// Server serves one http.Handler on a TCP listener and shuts it down gracefully.
// Safe for concurrent use.
type Server struct {
	mu       sync.RWMutex
	addr     string
	http     *http.Server
	listener net.Listener
	logger   *slog.Logger

	shutdown       time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	maxHeaderBytes int
	tlsConfig      *tls.Config
}

// New creates a Server for addr. Without WithLogger it logs nothing.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		logger:         slog.New(slog.DiscardHandler),
		shutdown:       DefaultShutdownTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("server"))
	return s
}

// Addr returns the bound address while listening, the configured one otherwise.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) listen(ctx context.Context, h http.Handler) (*http.Server, net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.http != nil {
		return nil, nil, ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, nil, errors.Join(ErrListen, err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	s.listener = ln
	s.http = &http.Server{
		Handler:        h,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		// Requests outlive ctx so in-flight ones finish during shutdown.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	return s.http, ln, nil
}

// Start binds the listener and serves h. A bind failure is returned at once.
// When ctx is canceled Start returns ctx.Err() and leaves shutdown to Stop.
func (s *Server) Start(ctx context.Context, h http.Handler) error {
	srv, ln, err := s.listen(ctx, h)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "listening",
			slog.String("addr", ln.Addr().String()),
			slog.Bool("tls", s.tlsConfig != nil),
		)
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrHTTPServer, err)
		}
		done <- err
	}()

	select {
	case err := <-done:
		s.release(srv)
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains in-flight requests within the shutdown timeout.
// Stopping a server that is not running is a no-op.
func (s *Server) Stop() error {
	s.mu.RLock()
	srv := s.http
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("shutting down", logger.Duration(s.shutdown))

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	err := srv.Shutdown(ctx)
	s.release(srv)
	if err != nil {
		s.logger.Error("shutdown failed", logger.Error(err))
		return errors.Join(ErrHTTPShutdown, err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) release(srv *http.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http == srv {
		s.http = nil
		s.listener = nil
	}
}

// Run adapts the server to errgroup: it serves until ctx is canceled,
// then stops gracefully. Cancellation is not reported as an error.
func (s *Server) Run(ctx context.Context, h http.Handler) func() error {
	return func() error {
		done := make(chan error, 1)
		go func() { done <- s.Start(ctx, h) }()

		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				return err
			}
			<-done
			return nil
		case err := <-done:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
