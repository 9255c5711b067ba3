package server

import "github.com/raysh454/utsushi/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// Logger is optional; a stdout logger is created when nil.
	Logger logging.Logger
}
