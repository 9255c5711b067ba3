package gatherer

import (
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	// MaxQueries bounds how many search queries are derived from the text.
	MaxQueries int

	// ResultsPerQuery bounds candidate URLs requested per query.
	ResultsPerQuery int

	// MaxConcurrency caps the fetch fan-out. The effective fan-out is
	// min(MaxQueries*ResultsPerQuery, MaxConcurrency).
	MaxConcurrency int

	// FetchTimeout bounds each individual fetch so one hanging source
	// cannot stall the whole request.
	FetchTimeout time.Duration

	// MinQueryWords / MaxQueryWords select and clip candidate sentences
	// during query derivation.
	MinQueryWords int
	MaxQueryWords int

	// RateLimit throttles outbound fetches (requests per second).
	RateLimit rate.Limit
}

func DefaultConfig() Config {
	return Config{
		MaxQueries:      3,
		ResultsPerQuery: 4,
		MaxConcurrency:  8,
		FetchTimeout:    10 * time.Second,
		MinQueryWords:   6,
		MaxQueryWords:   12,
		RateLimit:       rate.Limit(4),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxQueries <= 0 {
		c.MaxQueries = d.MaxQueries
	}
	if c.ResultsPerQuery <= 0 {
		c.ResultsPerQuery = d.ResultsPerQuery
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.MinQueryWords <= 0 {
		c.MinQueryWords = d.MinQueryWords
	}
	if c.MaxQueryWords <= 0 {
		c.MaxQueryWords = d.MaxQueryWords
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	return c
}
