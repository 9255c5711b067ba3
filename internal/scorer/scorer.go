// Package scorer turns match output into a user-facing verdict: a 0-100
// similarity percentage, a discrete risk tier, recommendations, and a
// one-line summary.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/raysh454/utsushi/internal/model"
)

const (
	// DefaultHighThreshold and DefaultMediumThreshold are the tier cut-offs:
	// similarity > high -> high risk, > medium -> medium, else low. They are
	// empirical constants; keep them configurable for tuning.
	DefaultHighThreshold   = 45
	DefaultMediumThreshold = 20
)

const noOverlapSummary = "No overlap with known sources was detected."

type Config struct {
	HighThreshold   int
	MediumThreshold int
}

func (c Config) withDefaults() Config {
	if c.HighThreshold <= 0 {
		c.HighThreshold = DefaultHighThreshold
	}
	if c.MediumThreshold <= 0 {
		c.MediumThreshold = DefaultMediumThreshold
	}
	return c
}

type Scorer struct {
	cfg Config
}

func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.withDefaults()}
}

// Similarity computes round(min(100, 100 * matchedChars / textLen)).
// Overlapping coverage across sources is double-counted on purpose: a
// passage found in several sources is more suspicious, not less.
func (s *Scorer) Similarity(textLen int, matches []model.MatchSegment) int {
	total := 0
	for _, m := range matches {
		total += m.Len()
	}
	if textLen < 1 {
		textLen = 1
	}
	pct := 100 * float64(total) / float64(textLen)
	if pct > 100 {
		pct = 100
	}
	return int(math.Round(pct))
}

// Risk classifies a similarity percentage into a tier.
func (s *Scorer) Risk(similarity int) model.RiskLevel {
	switch {
	case similarity > s.cfg.HighThreshold:
		return model.RiskHigh
	case similarity > s.cfg.MediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Recommendations derives the advice list from the match shape. Zero matches
// yield a single all-clear line; otherwise a rephrase/cite instruction plus
// a call-out of the distinct source titles in first-occurrence order.
func (s *Scorer) Recommendations(matches []model.MatchSegment) []string {
	if len(matches) == 0 {
		return []string{"No overlapping passages were found. The text appears to be original."}
	}

	seen := make(map[string]struct{}, len(matches))
	var titles []string
	for _, m := range matches {
		if _, ok := seen[m.SourceTitle]; ok {
			continue
		}
		seen[m.SourceTitle] = struct{}{}
		titles = append(titles, m.SourceTitle)
	}

	return []string{
		"Rephrase or quote and cite the highlighted sections before submitting.",
		"Review the overlapping sources: " + strings.Join(titles, ", ") + ".",
	}
}

// Summary renders the one-line synopsis with correct singular/plural
// grammar for both counts.
func (s *Scorer) Summary(matchCount, sourceCount int) string {
	if matchCount == 0 {
		return noOverlapSummary
	}
	return fmt.Sprintf("Found %d matching %s across %d %s.",
		matchCount, plural(matchCount, "passage", "passages"),
		sourceCount, plural(sourceCount, "source", "sources"))
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
