package app

import (
	"github.com/raysh454/utsushi/internal/gatherer"
	"github.com/raysh454/utsushi/internal/matcher"
	"github.com/raysh454/utsushi/internal/scorer"
	"github.com/raysh454/utsushi/internal/webclient"
)

// Hard input caps. Text beyond MaxTextLen is truncated before analysis;
// reference sources beyond MaxSources are dropped in order.
const (
	DefaultMaxTextLen = 200_000
	DefaultMaxSources = 64
)

// Config aggregates the engine's runtime configuration. Zero values fall
// back to each component's own defaults.
type Config struct {
	MatcherCfg  matcher.Config
	ScorerCfg   scorer.Config
	GathererCfg gatherer.Config

	// WebClient configuration
	WebClientCfg webclient.Config

	// SearchEndpoint is the SearxNG-compatible base URL. Empty disables web
	// gathering; detection then runs against the built-in corpus only.
	SearchEndpoint string

	// StorePath is the SQLite report archive location. Empty disables
	// archiving.
	StorePath string

	MaxTextLen int
	MaxSources int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MatcherCfg:  matcher.Config{},
		ScorerCfg:   scorer.Config{},
		GathererCfg: gatherer.DefaultConfig(),
		WebClientCfg: webclient.Config{
			Backend: webclient.ClientNetHTTP,
		},
		SearchEndpoint: "",
		StorePath:      "",
		MaxTextLen:     DefaultMaxTextLen,
		MaxSources:     DefaultMaxSources,
	}
}

func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	if out.MaxTextLen <= 0 {
		out.MaxTextLen = DefaultMaxTextLen
	}
	if out.MaxSources <= 0 {
		out.MaxSources = DefaultMaxSources
	}
	return &out
}
