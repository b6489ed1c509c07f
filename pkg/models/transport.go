package models

// DetectResponse is the response body for POST /food/detect.
// Items is empty (not null) when nothing could be resolved.
type DetectResponse struct {
	Items []Food `json:"items"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
