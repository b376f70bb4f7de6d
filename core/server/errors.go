package server

import "errors"

var (
	// ErrMissingAddress is returned when server address is not provided.
	ErrMissingAddress = errors.New("server address is required")
	// ErrFailedLoadCert is returned when the configured certificate pair cannot be loaded.
	ErrFailedLoadCert = errors.New("failed to load certificate")

	// Server lifecycle errors
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrListen               = errors.New("failed to bind listener")
	ErrHTTPServer           = errors.New("HTTP server error")
	ErrHTTPShutdown         = errors.New("HTTP shutdown error")
)
