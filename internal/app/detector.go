// Package app wires the engine together: it owns the detection pipeline
// (gather, match, score, archive) behind a single Detect call that the HTTP
// and WebSocket surfaces share.
package app

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/raysh454/utsushi/internal/corpus"
	"github.com/raysh454/utsushi/internal/gatherer"
	"github.com/raysh454/utsushi/internal/logging"
	"github.com/raysh454/utsushi/internal/matcher"
	"github.com/raysh454/utsushi/internal/model"
	"github.com/raysh454/utsushi/internal/reportstore"
	"github.com/raysh454/utsushi/internal/scorer"
)

var ErrEmptyText = errors.New("app: empty text")

// ProgressEvent reports pipeline progress. Phase is "gather", "match" or
// "done"; Done/Total count work items within the phase.
type ProgressEvent struct {
	Phase string `json:"phase"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

type ProgressFunc func(ProgressEvent)

// Detector runs the full detection pipeline. The gatherer and store are
// optional; without them detection runs against the built-in corpus and
// results are not archived.
type Detector struct {
	cfg      *Config
	matcher  *matcher.Matcher
	scorer   *scorer.Scorer
	gatherer *gatherer.Gatherer
	store    *reportstore.Store
	logger   logging.Logger
}

func NewDetector(cfg *Config, g *gatherer.Gatherer, store *reportstore.Store, logger logging.Logger) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		cfg:      cfg,
		matcher:  matcher.New(cfg.MatcherCfg),
		scorer:   scorer.New(cfg.ScorerCfg),
		gatherer: g,
		store:    store,
		logger:   logger.With(logging.Field{Key: "component", Value: "detector"}),
	}
}

// Detect analyzes text and returns a complete result. progress may be nil.
// Gathering and archiving failures degrade the result but never fail the
// request; only empty input is an error.
func (d *Detector) Detect(ctx context.Context, text string, progress ProgressFunc) (*model.DetectionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	text = truncateUTF8(text, d.cfg.MaxTextLen)

	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	sources := corpus.Sources()
	if d.gatherer != nil {
		gathered, err := d.gatherer.Gather(ctx, text, func(done, total int) {
			emit(ProgressEvent{Phase: "gather", Done: done, Total: total})
		})
		if err != nil {
			d.logger.Warn("gathering failed, continuing with corpus only",
				logging.Field{Key: "error", Value: err.Error()})
		}
		sources = append(sources, gathered...)
	}
	if len(sources) > d.cfg.MaxSources {
		sources = sources[:d.cfg.MaxSources]
	}

	emit(ProgressEvent{Phase: "match", Done: 0, Total: 1})
	matches, summaries := d.matcher.Detect(text, sources)
	emit(ProgressEvent{Phase: "match", Done: 1, Total: 1})

	if matches == nil {
		matches = []model.MatchSegment{}
	}
	if summaries == nil {
		summaries = []model.SourceSummary{}
	}

	similarity := d.scorer.Similarity(len(text), matches)

	res := &model.DetectionResult{
		ReportID:        uuid.New().String(),
		Similarity:      similarity,
		Risk:            d.scorer.Risk(similarity),
		Matches:         matches,
		Sources:         summaries,
		Recommendations: d.scorer.Recommendations(matches),
		Summary:         d.scorer.Summary(len(matches), len(summaries)),
	}

	if d.store != nil {
		if err := d.store.Save(ctx, res, len(text)); err != nil {
			d.logger.Warn("report archive failed",
				logging.Field{Key: "report_id", Value: res.ReportID},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	d.logger.Info("detection completed",
		logging.Field{Key: "report_id", Value: res.ReportID},
		logging.Field{Key: "similarity", Value: similarity},
		logging.Field{Key: "risk", Value: string(res.Risk)},
		logging.Field{Key: "segments", Value: len(matches)})

	emit(ProgressEvent{Phase: "done", Done: 1, Total: 1})
	return res, nil
}

// Store exposes the report archive for the read endpoints; nil when
// archiving is disabled.
func (d *Detector) Store() *reportstore.Store { return d.store }

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
