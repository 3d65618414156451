package api

import (
	"encoding/json"
	"net/http"
	"time"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/sources"
)

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	// Name is the candidate name to screen.
	Name string `json:"name"`

	// Category is an optional hint passed through to the sources
	// (e.g. "person", "entity").
	Category string `json:"category,omitempty"`
}

// BatchValidateRequest is the body of POST /v1/validate/batch.
type BatchValidateRequest struct {
	// Names are the candidate names to screen.
	Names []string `json:"names"`

	// Category is an optional hint passed through to the sources.
	Category string `json:"category,omitempty"`
}

// BatchValidateResponse is the body of a batch screening response.
type BatchValidateResponse struct {
	Results []BatchResult `json:"results"`
}

// BatchResult is one name's outcome within a batch response.
type BatchResult struct {
	Name   string                     `json:"name"`
	Result *screening.WatchlistResult `json:"result,omitempty"`
	Error  *ErrorBody                 `json:"error,omitempty"`
}

// SourceStatus describes one configured source in GET /v1/sources.
type SourceStatus struct {
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Enabled            bool            `json:"enabled"`
	RequiresAuth       bool            `json:"requires_auth"`
	HasAPIKey          bool            `json:"has_api_key"`
	RateLimitPerMinute int             `json:"rate_limit_per_minute,omitempty"`
	Health             *sources.Health `json:"health,omitempty"`
}

// SourceKeyRequest is the body of PUT /v1/sources/{name}/key.
type SourceKeyRequest struct {
	APIKey string `json:"api_key"`
}

// ErrorBody is the inner error object of an error response.
type ErrorBody struct {
	// Type is a stable machine-readable error type.
	Type string `json:"type"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// ErrorResponse is the envelope for all error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Type: errType, Message: message}})
}

// healthResponse builds a liveness response for the current instant.
func healthResponse() HealthResponse {
	return HealthResponse{Status: "ok", Timestamp: time.Now().Unix()}
}
