package interfaces

// Extractor turns a fetched HTML payload into a titled text document.
type Extractor interface {
	Extract(body []byte, pageURL string) (title string, content string, err error)
}
