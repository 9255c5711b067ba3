package scorer_test

import (
	"strings"
	"testing"

	"github.com/raysh454/utsushi/internal/model"
	"github.com/raysh454/utsushi/internal/scorer"
)

func seg(start, end int, id, title string) model.MatchSegment {
	return model.MatchSegment{Start: start, End: end, SourceID: id, SourceTitle: title}
}

func TestSimilarity(t *testing.T) {
	s := scorer.New(scorer.Config{})

	cases := []struct {
		name    string
		textLen int
		matches []model.MatchSegment
		want    int
	}{
		{"no matches", 400, nil, 0},
		{"quarter coverage rounds", 400, []model.MatchSegment{seg(102, 211, "a", "A")}, 27},
		{"full coverage", 100, []model.MatchSegment{seg(0, 100, "a", "A")}, 100},
		{"cross-source double counting", 100, []model.MatchSegment{
			seg(0, 50, "a", "A"),
			seg(0, 50, "b", "B"),
		}, 100},
		{"double counting capped at 100", 100, []model.MatchSegment{
			seg(0, 80, "a", "A"),
			seg(0, 80, "b", "B"),
		}, 100},
		{"zero length text guarded", 0, []model.MatchSegment{seg(0, 10, "a", "A")}, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Similarity(tc.textLen, tc.matches); got != tc.want {
				t.Errorf("Similarity = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRisk_Thresholds(t *testing.T) {
	s := scorer.New(scorer.Config{})

	cases := []struct {
		similarity int
		want       model.RiskLevel
	}{
		{0, model.RiskLow},
		{20, model.RiskLow},
		{21, model.RiskMedium},
		{27, model.RiskMedium},
		{45, model.RiskMedium},
		{46, model.RiskHigh},
		{100, model.RiskHigh},
	}
	for _, tc := range cases {
		if got := s.Risk(tc.similarity); got != tc.want {
			t.Errorf("Risk(%d) = %s, want %s", tc.similarity, got, tc.want)
		}
	}
}

func TestRisk_CustomThresholds(t *testing.T) {
	s := scorer.New(scorer.Config{HighThreshold: 80, MediumThreshold: 50})

	if got := s.Risk(60); got != model.RiskMedium {
		t.Errorf("Risk(60) with custom thresholds = %s, want medium", got)
	}
	if got := s.Risk(81); got != model.RiskHigh {
		t.Errorf("Risk(81) with custom thresholds = %s, want high", got)
	}
}

func TestRecommendations(t *testing.T) {
	s := scorer.New(scorer.Config{})

	t.Run("no matches", func(t *testing.T) {
		recs := s.Recommendations(nil)
		if len(recs) != 1 {
			t.Fatalf("expected single all-clear recommendation, got %v", recs)
		}
		if !strings.Contains(recs[0], "original") {
			t.Errorf("unexpected all-clear text: %q", recs[0])
		}
	})

	t.Run("distinct titles in first-occurrence order", func(t *testing.T) {
		recs := s.Recommendations([]model.MatchSegment{
			seg(10, 50, "b", "Beta Report"),
			seg(60, 90, "a", "Alpha Survey"),
			seg(100, 140, "b", "Beta Report"),
		})
		if len(recs) != 2 {
			t.Fatalf("expected exactly 2 recommendations, got %d: %v", len(recs), recs)
		}
		if !strings.Contains(recs[1], "Beta Report, Alpha Survey") {
			t.Errorf("titles should be de-duplicated in first-occurrence order: %q", recs[1])
		}
	})
}

func TestSummary_Grammar(t *testing.T) {
	s := scorer.New(scorer.Config{})

	cases := []struct {
		matches int
		sources int
		want    string
	}{
		{0, 0, "No overlap with known sources was detected."},
		{1, 1, "Found 1 matching passage across 1 source."},
		{2, 1, "Found 2 matching passages across 1 source."},
		{3, 2, "Found 3 matching passages across 2 sources."},
	}
	for _, tc := range cases {
		if got := s.Summary(tc.matches, tc.sources); got != tc.want {
			t.Errorf("Summary(%d, %d) = %q, want %q", tc.matches, tc.sources, got, tc.want)
		}
	}
}
