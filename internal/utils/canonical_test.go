package utils

import (
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		opts CanonicalizeOptions
		want string
	}{
		{
			in:   "HTTP://Example.COM:80/foo/../bar/?b=2&a=1#frag",
			opts: CanonicalizeOptions{DefaultScheme: "", StripTrailingSlash: false},
			want: "http://example.com/bar?a=1&b=2",
		},
		{
			in:   "https://example.com:443/index.html#section",
			opts: CanonicalizeOptions{},
			want: "https://example.com/index.html",
		},
		{
			in:   "example.com/page?utm_source=x&utm_medium=y&z=1",
			opts: CanonicalizeOptions{DefaultScheme: "https", DropTrackingParams: true},
			want: "https://example.com/page?z=1",
		},
		{
			in:   "https://例え.テスト/a",
			opts: CanonicalizeOptions{},
			// punycode-encoded host
			want: "https://xn--r8jz45g.xn--zckzah/a",
		},
		{
			in:   "https://example.com/foo/",
			opts: CanonicalizeOptions{StripTrailingSlash: true},
			want: "https://example.com/foo",
		},
	}

	for _, tt := range tests {
		got, err := Canonicalize(tt.in, tt.opts)
		if err != nil {
			t.Fatalf("canonicalize(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalize_SameSourceDifferentCase(t *testing.T) {
	opts := CanonicalizeOptions{StripTrailingSlash: true}

	a, err := Canonicalize("HTTPS://Example.COM/Articles/One/", opts)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	b, err := Canonicalize("https://example.com/Articles/One", opts)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if a != b {
		t.Errorf("case-variant hosts should canonicalize equal: %q vs %q", a, b)
	}
}

func TestCanonicalize_Errors(t *testing.T) {
	if _, err := Canonicalize("", CanonicalizeOptions{}); err == nil {
		t.Error("expected error for empty url")
	}
	if _, err := Canonicalize("/relative/only", CanonicalizeOptions{}); err == nil {
		t.Error("expected error for missing host")
	}
}
