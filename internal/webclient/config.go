package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// DefaultTimeout bounds a whole request when the caller does not supply a
// tighter per-request context.
const DefaultTimeout = 30 * time.Second

// Config is the minimal configuration required for constructing a WebClient.
type Config struct {
	Backend Client
	Timeout time.Duration
}
