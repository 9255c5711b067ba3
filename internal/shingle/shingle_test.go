package shingle_test

import (
	"testing"

	"github.com/raysh454/utsushi/internal/shingle"
)

func TestTokenize_OffsetsAndNormalization(t *testing.T) {
	text := "Heat waves, vector-borne DISEASES."
	tokens := shingle.Tokenize(text)

	want := []struct {
		text  string
		start int
		end   int
	}{
		{"heat", 0, 4},
		{"waves", 5, 10},
		{"vector", 12, 18},
		{"borne", 19, 24},
		{"diseases", 25, 33},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		got := tokens[i]
		if got.Text != w.text || got.Start != w.start || got.End != w.end {
			t.Errorf("token %d: want {%q %d %d}, got {%q %d %d}",
				i, w.text, w.start, w.end, got.Text, got.Start, got.End)
		}
		if text[got.Start:got.End] == "" {
			t.Errorf("token %d: empty original slice", i)
		}
	}
}

func TestTokenize_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "—!?."} {
		if tokens := shingle.Tokenize(text); len(tokens) != 0 {
			t.Errorf("Tokenize(%q): expected no tokens, got %v", text, tokens)
		}
	}
}

func TestIndex_WindowCountAndSpans(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	shingles := shingle.Index(text, 8)

	// 10 tokens, k=8 -> 3 windows
	if len(shingles) != 3 {
		t.Fatalf("expected 3 shingles, got %d", len(shingles))
	}
	for i, s := range shingles {
		if s.StartToken != i || s.EndToken != i+8 {
			t.Errorf("shingle %d: token span [%d,%d), want [%d,%d)", i, s.StartToken, s.EndToken, i, i+8)
		}
		if s.Start >= s.End {
			t.Errorf("shingle %d: char span [%d,%d) not increasing", i, s.Start, s.End)
		}
	}
	if shingles[0].Start != 0 {
		t.Errorf("first shingle should start at 0, got %d", shingles[0].Start)
	}
	if shingles[2].End != len(text) {
		t.Errorf("last shingle should end at %d, got %d", len(text), shingles[2].End)
	}
}

func TestIndex_ShortDocumentSingleShingle(t *testing.T) {
	text := "only four words here"
	shingles := shingle.Index(text, 8)

	if len(shingles) != 1 {
		t.Fatalf("expected 1 shingle for short doc, got %d", len(shingles))
	}
	s := shingles[0]
	if s.StartToken != 0 || s.EndToken != 4 {
		t.Errorf("token span [%d,%d), want [0,4)", s.StartToken, s.EndToken)
	}
	if s.Start != 0 || s.End != len(text) {
		t.Errorf("char span [%d,%d), want [0,%d)", s.Start, s.End, len(text))
	}
}

func TestIndex_FingerprintIgnoresCaseAndPunctuation(t *testing.T) {
	a := shingle.Index("The quick brown fox jumps over the lazy dog", 8)
	b := shingle.Index("THE QUICK, brown fox; jumps over the LAZY dog!", 8)

	if len(a) == 0 || len(b) == 0 {
		t.Fatal("expected shingles from both documents")
	}
	if a[0].Hash != b[0].Hash {
		t.Errorf("normalized windows should fingerprint equally: %x vs %x", a[0].Hash, b[0].Hash)
	}
}

func TestIndex_Deterministic(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"
	a := shingle.Index(text, 8)
	b := shingle.Index(text, 8)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("shingle %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestIndex_Empty(t *testing.T) {
	if s := shingle.Index("", 8); s != nil {
		t.Errorf("expected nil for empty text, got %v", s)
	}
}
