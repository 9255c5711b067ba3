package server

// DetectRequest is the payload for a detection run, over REST or WebSocket.
type DetectRequest struct {
	Text string `json:"text" example:"The essay below examines..."`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
