// Package extractor converts fetched HTML payloads into the titled plain-text
// documents the matcher can index.
package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raysh454/utsushi/internal/interfaces"
	"github.com/raysh454/utsushi/internal/logging"
)

// skipElements are subtrees that contribute markup, not prose.
var skipElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"iframe":   {},
	"head":     {},
	"svg":      {},
}

// HTMLExtractor implements interfaces.Extractor over parsed HTML. Title
// resolution prefers <title>, then og:title, then the first <h1>; body text
// is every text node outside skipElements with whitespace collapsed.
type HTMLExtractor struct {
	logger logging.Logger
}

var _ interfaces.Extractor = (*HTMLExtractor)(nil)

func New(logger logging.Logger) *HTMLExtractor {
	return &HTMLExtractor{logger: logger}
}

func (e *HTMLExtractor) Extract(body []byte, pageURL string) (string, string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse html from %s: %w", pageURL, err)
	}

	title := extractTitle(root)
	if title == "" {
		title = pageURL
	}

	var b strings.Builder
	collectText(root, &b)
	content := strings.Join(strings.Fields(b.String()), " ")

	if e.logger != nil {
		e.logger.Debug("extracted document",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "title", Value: title},
			logging.Field{Key: "content_len", Value: len(content)})
	}

	return title, content, nil
}

func extractTitle(root *html.Node) string {
	doc := goquery.NewDocumentFromNode(root)

	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func collectText(node *html.Node, b *strings.Builder) {
	if node.Type == html.ElementNode {
		if _, skip := skipElements[node.Data]; skip {
			return
		}
	}
	if node.Type == html.TextNode {
		b.WriteString(node.Data)
		b.WriteByte(' ')
		return
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
