// Package gatherer turns the submitted text into a set of live reference
// sources: it derives search queries from the text, collects candidate URLs,
// and fetches and extracts them concurrently. Failures are dropped, never
// fatal; the caller always gets whatever subset of sources survived.
package gatherer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/raysh454/utsushi/internal/interfaces"
	"github.com/raysh454/utsushi/internal/logging"
	"github.com/raysh454/utsushi/internal/model"
	"github.com/raysh454/utsushi/internal/utils"
)

var ErrEmptyText = errors.New("gatherer: empty text")

// Progress is invoked after each candidate fetch settles, successful or not.
// done counts settled fetches, total is the number of candidates.
type Progress func(done, total int)

type Gatherer struct {
	cfg      Config
	searcher interfaces.Searcher
	wc       interfaces.WebClient
	ex       interfaces.Extractor
	limiter  *rate.Limiter
	logger   logging.Logger
}

func New(cfg Config, searcher interfaces.Searcher, wc interfaces.WebClient, ex interfaces.Extractor, logger logging.Logger) *Gatherer {
	cfg = cfg.withDefaults()
	return &Gatherer{
		cfg:      cfg,
		searcher: searcher,
		wc:       wc,
		ex:       ex,
		limiter:  rate.NewLimiter(cfg.RateLimit, int(cfg.RateLimit)+1),
		logger:   logger.With(logging.Field{Key: "component", Value: "gatherer"}),
	}
}

type candidate struct {
	canonical string
	rawURL    string
	hitTitle  string
}

// Gather searches for, fetches and extracts reference sources for text.
// The returned order is the candidates' first-appearance order with failed
// fetches removed. progress may be nil.
func (g *Gatherer) Gather(ctx context.Context, text string, progress Progress) ([]model.ReferenceSource, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if g.searcher == nil {
		// No search backend configured; the engine runs corpus-only.
		return nil, nil
	}

	queries := DeriveQueries(text, g.cfg.MaxQueries, g.cfg.MinQueryWords, g.cfg.MaxQueryWords)
	if len(queries) == 0 {
		return nil, nil
	}

	candidates := g.collectCandidates(ctx, queries)
	if len(candidates) == 0 {
		return nil, nil
	}

	sources := g.fetchAll(ctx, candidates, progress)

	g.logger.Info("gather completed",
		logging.Field{Key: "queries", Value: len(queries)},
		logging.Field{Key: "candidates", Value: len(candidates)},
		logging.Field{Key: "sources", Value: len(sources)})

	return sources, nil
}

// collectCandidates runs the derived queries sequentially and dedupes hits
// by canonical URL, keeping first-appearance order. A failed query is logged
// and skipped.
func (g *Gatherer) collectCandidates(ctx context.Context, queries []string) []candidate {
	seen := make(map[string]struct{})
	var out []candidate

	for _, q := range queries {
		hits, err := g.searcher.Search(ctx, q, g.cfg.ResultsPerQuery)
		if err != nil {
			g.logger.Warn("search query failed",
				logging.Field{Key: "query", Value: q},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		for _, h := range hits {
			canon, err := utils.Canonicalize(h.URL, utils.CanonicalizeOptions{
				DefaultScheme:      "https",
				DropTrackingParams: true,
				StripTrailingSlash: true,
			})
			if err != nil {
				g.logger.Warn("skipping malformed candidate url",
					logging.Field{Key: "url", Value: h.URL},
					logging.Field{Key: "error", Value: err.Error()})
				continue
			}
			if _, dup := seen[canon]; dup {
				continue
			}
			seen[canon] = struct{}{}
			out = append(out, candidate{canonical: canon, rawURL: h.URL, hitTitle: h.Title})
		}
	}
	return out
}

// fetchAll fans out over the candidates with a bounded semaphore and waits
// for every fetch to settle. Results keep candidate order; failed slots stay
// nil and are compacted away.
func (g *Gatherer) fetchAll(ctx context.Context, candidates []candidate, progress Progress) []model.ReferenceSource {
	total := len(candidates)
	results := make([]*model.ReferenceSource, total)

	concurrency := g.cfg.MaxQueries * g.cfg.ResultsPerQuery
	if concurrency > g.cfg.MaxConcurrency {
		concurrency = g.cfg.MaxConcurrency
	}
	sem := make(chan struct{}, concurrency)

	var mu sync.Mutex
	done := 0
	settle := func() {
		mu.Lock()
		done++
		d := done
		mu.Unlock()
		if progress != nil {
			progress(d, total)
		}
	}

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c candidate) {
			defer wg.Done()
			defer settle()

			sem <- struct{}{}
			defer func() { <-sem }()

			src, err := g.fetchOne(ctx, c)
			if err != nil {
				g.logger.Warn("dropping source",
					logging.Field{Key: "url", Value: c.canonical},
					logging.Field{Key: "error", Value: err.Error()})
				return
			}
			results[i] = src
		}(i, c)
	}
	wg.Wait()

	out := make([]model.ReferenceSource, 0, total)
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (g *Gatherer) fetchOne(ctx context.Context, c candidate) (*model.ReferenceSource, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fctx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()

	resp, err := g.wc.Get(fctx, c.rawURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	title, content, err := g.ex.Extract(resp.Body, c.canonical)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("no extractable text")
	}
	// The extractor falls back to the page URL for titleless pages; the
	// search hit usually has something better.
	if (title == "" || title == c.canonical) && c.hitTitle != "" {
		title = c.hitTitle
	}
	if title == "" {
		title = c.canonical
	}

	return &model.ReferenceSource{
		ID:      "web-" + uuid.New().String(),
		Title:   title,
		URL:     c.canonical,
		Content: content,
	}, nil
}

// DeriveQueries splits text into sentences and picks up to maxQueries of
// them as search queries, in document order. Sentences shorter than minWords
// are skipped, longer ones are clipped to maxWords. Duplicate queries
// (case-insensitive) are emitted once.
func DeriveQueries(text string, maxQueries, minWords, maxWords int) []string {
	if maxQueries <= 0 {
		return nil
	}

	sentences := splitSentences(text)
	seen := make(map[string]struct{})
	var out []string

	for _, s := range sentences {
		words := strings.Fields(s)
		if len(words) < minWords {
			continue
		}
		if len(words) > maxWords {
			words = words[:maxWords]
		}
		q := strings.Join(words, " ")
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == maxQueries {
			break
		}
	}
	return out
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', '\n', '\r':
			return true
		}
		return false
	})
}
