// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/raysh454/utsushi/internal/interfaces"
	"github.com/raysh454/utsushi/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements interfaces.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...interfaces.Field) interfaces.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements interfaces.WebClient.
// By default it returns body "ok:<url>" with status 200. Set Bodies[url]
// for a specific response body, FailURLs[url] = true to force an error.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Bodies        map[string]string
	mu            sync.Mutex
	Requests      []*model.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	body := "ok:" + req.URL
	if d.Bodies != nil {
		if b, ok := d.Bodies[req.URL]; ok {
			body = b
		}
	}

	return &model.Response{
		Request:    req,
		Body:       []byte(body),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*model.Response, error) {
	return d.Do(ctx, &model.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns the number of requests recorded so far.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Searcher ──────────────────────────────────────────────────────────

// DummySearcher implements interfaces.Searcher. Hits are returned for every
// query unless HitsByQuery has an entry for it; Err, when set, fails every
// call. Queries records each query in call order.
type DummySearcher struct {
	Hits        []model.SearchHit
	HitsByQuery map[string][]model.SearchHit
	Err         error
	mu          sync.Mutex
	Queries     []string
}

func (s *DummySearcher) Search(_ context.Context, query string, limit int) ([]model.SearchHit, error) {
	s.mu.Lock()
	s.Queries = append(s.Queries, query)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	hits := s.Hits
	if s.HitsByQuery != nil {
		if h, ok := s.HitsByQuery[query]; ok {
			hits = h
		}
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return append([]model.SearchHit(nil), hits...), nil
}

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
