package model

// SearchHit is one candidate result from the external search capability.
type SearchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}
