// Package shingle turns a document into a comparable fingerprint sequence.
// A shingle is a fixed-width overlapping window of word tokens; two documents
// that share a shingle fingerprint share a k-word run at the normalized level.
package shingle

import (
	"hash/fnv"
	"unicode"
)

// DefaultSize is the default shingle width in words.
const DefaultSize = 8

// Token is a single word with its byte offsets in the original text.
// Text is the normalized (lower-cased) form used for fingerprinting;
// Start/End always refer to the original, un-normalized string.
type Token struct {
	Text  string
	Start int
	End   int
}

// Shingle is one k-word window of a document. Token and character spans are
// half-open; Hash is the FNV-1a fingerprint of the normalized window.
type Shingle struct {
	StartToken int
	EndToken   int
	Start      int
	End        int
	Hash       uint64
}

// Tokenize splits text into word tokens on whitespace/punctuation boundaries.
// A token is a maximal run of letters and digits, so "vector-borne" yields
// two tokens. Offsets index the original string.
func Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	var word []rune

	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, Token{Text: string(word), Start: start, End: end})
		start = -1
		word = word[:0]
	}

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			word = append(word, unicode.ToLower(r))
			continue
		}
		flush(i)
	}
	flush(len(text))

	return tokens
}

// Index builds the ordered shingle sequence for text. Windows advance by one
// token so partially rewritten passages still share fingerprints with their
// origin. A document shorter than k tokens produces a single shingle spanning
// the whole document; an empty document produces none.
func Index(text string, k int) []Shingle {
	if k <= 0 {
		k = DefaultSize
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	if len(tokens) < k {
		return []Shingle{window(tokens, 0, len(tokens))}
	}

	out := make([]Shingle, 0, len(tokens)-k+1)
	for i := 0; i+k <= len(tokens); i++ {
		out = append(out, window(tokens, i, i+k))
	}
	return out
}

func window(tokens []Token, lo, hi int) Shingle {
	h := fnv.New64a()
	for i := lo; i < hi; i++ {
		if i > lo {
			h.Write([]byte{' '})
		}
		h.Write([]byte(tokens[i].Text))
	}
	return Shingle{
		StartToken: lo,
		EndToken:   hi,
		Start:      tokens[lo].Start,
		End:        tokens[hi-1].End,
		Hash:       h.Sum64(),
	}
}
