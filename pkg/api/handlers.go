package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/engine"
	"sentinel-hq/sentinel/pkg/sources"
)

// maxBatchNames caps how many names one batch request may carry.
const maxBatchNames = 250

// Handler serves the screening API on top of an engine.
type Handler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewHandler creates an API handler for the given engine.
func NewHandler(eng *engine.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: eng, logger: logger}
}

// Routes registers all API routes on a fresh mux and returns it.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/validate", h.handleValidate)
	mux.HandleFunc("POST /v1/validate/batch", h.handleValidateBatch)
	mux.HandleFunc("GET /v1/stats", h.handleStats)
	mux.HandleFunc("GET /v1/sources", h.handleListSources)
	mux.HandleFunc("POST /v1/sources/{name}/enable", h.handleEnableSource)
	mux.HandleFunc("POST /v1/sources/{name}/disable", h.handleDisableSource)
	mux.HandleFunc("PUT /v1/sources/{name}/key", h.handleSetSourceKey)
	mux.HandleFunc("DELETE /v1/cache", h.handleClearCache)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	return mux
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}

	result, err := h.engine.Validate(r.Context(), req.Name, req.Category)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "names must not be empty")
		return
	}
	if len(req.Names) > maxBatchNames {
		writeError(w, http.StatusBadRequest, "invalid_request", "too many names in one batch")
		return
	}

	items := h.engine.ValidateBatch(r.Context(), req.Names, req.Category)

	resp := BatchValidateResponse{Results: make([]BatchResult, len(items))}
	for i, item := range items {
		result := BatchResult{Name: item.Name, Result: item.Result}
		if item.Err != nil {
			result.Error = &ErrorBody{
				Type:    errorType(item.Err),
				Message: item.Err.Error(),
			}
		}
		resp.Results[i] = result
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to compute statistics")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	configs := h.engine.Registry().Configs()

	statuses := make([]SourceStatus, 0, len(configs))
	for _, cfg := range configs {
		status := SourceStatus{
			Name:               cfg.Name,
			Type:               cfg.Type,
			Enabled:            cfg.Enabled,
			RequiresAuth:       cfg.RequiresAuth,
			HasAPIKey:          cfg.APIKey != "",
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}
		if health, ok := h.engine.Registry().SourceHealth(cfg.Name); ok {
			status.Health = &health
		}
		statuses = append(statuses, status)
	}

	writeJSON(w, http.StatusOK, map[string][]SourceStatus{"sources": statuses})
}

func (h *Handler) handleEnableSource(w http.ResponseWriter, r *http.Request) {
	h.setSourceEnabled(w, r, true)
}

func (h *Handler) handleDisableSource(w http.ResponseWriter, r *http.Request) {
	h.setSourceEnabled(w, r, false)
}

func (h *Handler) setSourceEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	name := r.PathValue("name")

	var err error
	if enabled {
		err = h.engine.Registry().Enable(name)
	} else {
		err = h.engine.Registry().Disable(name)
	}
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "source toggled", "source", name, "enabled", enabled)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "enabled": enabled})
}

func (h *Handler) handleSetSourceKey(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req SourceKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "api_key must not be empty")
		return
	}

	if err := h.engine.Registry().Configure(name, req.APIKey); err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "source credential updated", "source", name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "has_api_key": true})
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearCache(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "cache clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to clear cache")
		return
	}

	h.logger.InfoContext(r.Context(), "cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse())
}

// writeEngineError maps an engine error to an HTTP error response.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	var invalidErr *screening.InvalidInputError
	if errors.As(err, &invalidErr) {
		writeError(w, http.StatusBadRequest, "invalid_input", invalidErr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, errorType(err), "screening failed")
}

// writeRegistryError maps a registry error to an HTTP error response.
func (h *Handler) writeRegistryError(w http.ResponseWriter, err error) {
	var unknownErr *sources.UnknownSourceError
	if errors.As(err, &unknownErr) {
		writeError(w, http.StatusNotFound, "unknown_source", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "source_error", err.Error())
}

// errorType maps an error to its stable response type string.
func errorType(err error) string {
	var (
		invalidErr *screening.InvalidInputError
		storageErr *screening.StorageError
	)
	switch {
	case errors.As(err, &invalidErr):
		return "invalid_input"
	case errors.As(err, &storageErr):
		return "storage_error"
	default:
		return "internal_error"
	}
}
