// Package matcher compares submitted text against reference sources via
// shingle fingerprint intersection and merges overlapping runs into
// per-source character spans.
package matcher

import (
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/utsushi/internal/model"
	"github.com/raysh454/utsushi/internal/shingle"
)

// minRunCharsPerWord sizes the default minimum-run filter: a merged run must
// cover roughly one shingle width of characters before it counts as overlap.
// This is what keeps stock phrases ("in this paper") out of the results.
const minRunCharsPerWord = 4

type Config struct {
	// ShingleSize is the window width in words. 0 means shingle.DefaultSize.
	ShingleSize int

	// MinRunChars is the minimum character length of a merged run.
	// 0 means ShingleSize * minRunCharsPerWord.
	MinRunChars int
}

func (c Config) withDefaults() Config {
	if c.ShingleSize <= 0 {
		c.ShingleSize = shingle.DefaultSize
	}
	if c.MinRunChars <= 0 {
		c.MinRunChars = c.ShingleSize * minRunCharsPerWord
	}
	return c
}

// Matcher is a pure comparison engine: no I/O, no shared mutable state, and
// bit-identical output for identical input.
type Matcher struct {
	cfg Config
}

func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg.withDefaults()}
}

// run is a candidate match before coalescing: a char span of the submitted
// text plus the (approximate) region of the source it was lifted from.
type run struct {
	start, end       int
	srcStart, srcEnd int
}

// Detect compares text against every source independently and returns all
// match segments ordered by start offset (then source id), plus one summary
// per source that produced at least one segment, ordered by matched
// character count descending.
//
// Sources are compared in slice order; callers put static corpus entries
// before dynamically gathered ones so insertion-order tie-breaks favor the
// corpus.
func (m *Matcher) Detect(text string, sources []model.ReferenceSource) ([]model.MatchSegment, []model.SourceSummary) {
	subject := shingle.Index(text, m.cfg.ShingleSize)
	if len(subject) == 0 {
		return nil, nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = time.Second

	var segments []model.MatchSegment
	var summaries []model.SourceSummary

	for _, src := range sources {
		runs := m.matchSource(text, subject, src.Content)
		if len(runs) == 0 {
			continue
		}

		summary := model.SourceSummary{
			SourceID: src.ID,
			Title:    src.Title,
			URL:      src.URL,
		}

		var weighted float64
		for _, r := range runs {
			segments = append(segments, model.MatchSegment{
				Start:       r.start,
				End:         r.end,
				SourceID:    src.ID,
				SourceTitle: src.Title,
			})
			length := r.end - r.start
			summary.SegmentCount++
			summary.MatchedChars += length
			weighted += exactness(dmp, text[r.start:r.end], sliceContent(src.Content, r.srcStart, r.srcEnd)) * float64(length)
		}
		if summary.MatchedChars > 0 {
			summary.Exactness = weighted / float64(summary.MatchedChars)
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].Start != segments[j].Start {
			return segments[i].Start < segments[j].Start
		}
		return segments[i].SourceID < segments[j].SourceID
	})
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].MatchedChars > summaries[j].MatchedChars
	})

	return segments, summaries
}

// matchSource finds the coalesced match runs for a single source.
func (m *Matcher) matchSource(text string, subject []shingle.Shingle, content string) []run {
	srcShingles := shingle.Index(content, m.cfg.ShingleSize)
	if len(srcShingles) == 0 {
		return nil
	}

	// First occurrence wins so source-side spans stay deterministic.
	fingerprints := make(map[uint64]shingle.Shingle, len(srcShingles))
	for _, s := range srcShingles {
		if _, ok := fingerprints[s.Hash]; !ok {
			fingerprints[s.Hash] = s
		}
	}

	// Merge consecutive hits. Subject windows advance by one token, so hits
	// at consecutive indexes are exactly the "start token + 1" runs.
	var runs []run
	for i := 0; i < len(subject); {
		first, hit := fingerprints[subject[i].Hash]
		if !hit {
			i++
			continue
		}
		j := i
		last := first
		for j+1 < len(subject) {
			next, ok := fingerprints[subject[j+1].Hash]
			if !ok {
				break
			}
			j++
			last = next
		}
		runs = append(runs, run{
			start:    subject[i].Start,
			end:      subject[j].End,
			srcStart: min(first.Start, last.Start),
			srcEnd:   max(first.End, last.End),
		})
		i = j + 1
	}

	// Minimum-run filter. A whole-document shingle is exempt: a short text
	// that matches in full is verbatim reuse regardless of its length.
	wholeDoc := len(subject) == 1
	kept := runs[:0]
	for _, r := range runs {
		if wholeDoc || r.end-r.start >= m.cfg.MinRunChars {
			kept = append(kept, r)
		}
	}
	runs = kept

	runs = coalesce(runs)
	for i := range runs {
		runs[i].start, runs[i].end = expandPunct(text, runs[i].start, runs[i].end)
	}
	// Expansion can close a punctuation-only gap between neighbours.
	return coalesce(runs)
}

// coalesce merges overlapping or adjacent runs. Input is ordered by start,
// which the subject scan guarantees.
func coalesce(runs []run) []run {
	if len(runs) < 2 {
		return runs
	}
	out := runs[:1]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			last.srcStart = min(last.srcStart, r.srcStart)
			last.srcEnd = max(last.srcEnd, r.srcEnd)
			continue
		}
		out = append(out, r)
	}
	return out
}

// expandPunct widens a span over the punctuation glued to its edges, so a
// matched sentence reports its closing period and opening quote. Whitespace
// and word characters stop the expansion.
func expandPunct(text string, start, end int) (int, int) {
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if r == utf8.RuneError || unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		end += size
	}
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if r == utf8.RuneError || unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		start -= size
	}
	return start, end
}

// exactness scores how literally a submitted span reproduces its source
// region: 1 - levenshtein/maxLen over the raw (un-normalized) text.
func exactness(dmp *diffmatchpatch.DiffMatchPatch, submitted, source string) float64 {
	if submitted == "" || source == "" {
		return 0
	}
	diffs := dmp.DiffMain(submitted, source, false)
	distance := dmp.DiffLevenshtein(diffs)
	longest := utf8.RuneCountInString(submitted)
	if n := utf8.RuneCountInString(source); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	score := 1 - float64(distance)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}

func sliceContent(content string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(content) {
		end = len(content)
	}
	if start >= end {
		return ""
	}
	return content[start:end]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
