// Package searchclient implements the search capability against a
// SearxNG-compatible JSON endpoint. The engine only depends on
// interfaces.Searcher; this is the production implementation.
package searchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/raysh454/utsushi/internal/interfaces"
	"github.com/raysh454/utsushi/internal/logging"
	"github.com/raysh454/utsushi/internal/model"
)

type Config struct {
	// Endpoint is the search service base URL, e.g. "http://localhost:8888".
	Endpoint string
}

type HTTPSearcher struct {
	endpoint string
	wc       interfaces.WebClient
	logger   logging.Logger
}

var _ interfaces.Searcher = (*HTTPSearcher)(nil)

func New(cfg Config, wc interfaces.WebClient, logger logging.Logger) (*HTTPSearcher, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("searchclient: empty endpoint")
	}
	if wc == nil {
		return nil, fmt.Errorf("searchclient: nil webclient")
	}
	return &HTTPSearcher{
		endpoint: endpoint,
		wc:       wc,
		logger:   logger.With(logging.Field{Key: "component", Value: "searchclient"}),
	}, nil
}

// searchResponse mirrors the SearxNG JSON result shape; extra fields are
// ignored on decode.
type searchResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search returns up to limit candidate hits for query. Fewer results than
// requested is normal; an empty result set is not an error.
func (s *HTTPSearcher) Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	resp, err := s.wc.Get(ctx, s.endpoint+"/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("search %q: unexpected status %d", query, resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", query, err)
	}

	hits := make([]model.SearchHit, 0, limit)
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, model.SearchHit{URL: r.URL, Title: r.Title, Snippet: r.Content})
		if len(hits) == limit {
			break
		}
	}

	s.logger.Debug("search completed",
		logging.Field{Key: "query", Value: query},
		logging.Field{Key: "hits", Value: len(hits)})

	return hits, nil
}
