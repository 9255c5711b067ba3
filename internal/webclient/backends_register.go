package webclient

import "github.com/raysh454/utsushi/internal/interfaces"

func init() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger interfaces.Logger) (interfaces.WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}
