package server

import "errors"

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")

	ErrInvalidForm     = errors.New("invalid multipart form")
	ErrFailedToSpool   = errors.New("failed to spool uploaded file")
	ErrRequestTooLarge = errors.New("request body too large")
	ErrAlreadyRunning  = errors.New("server already running")
)
