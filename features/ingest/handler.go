package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"brainweave/backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// IngestYouTube handles POST /ingest/youtube.
func (h *Handler) IngestYouTube(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, CodeInvalidURL, "request body must be valid JSON", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		h.writeError(r.Context(), w, CodeInvalidURL, "url is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		var ingErr *Error
		if errors.As(err, &ingErr) {
			slog.ErrorContext(r.Context(), "ingestion failed",
				"url", req.URL, "error_code", ingErr.Code, "error", err)
			h.writeError(r.Context(), w, ingErr.Code, ingErr.Message, HTTPStatus(ingErr.Code))
			return
		}
		slog.ErrorContext(r.Context(), "ingestion failed", "url", req.URL, "error", err)
		h.writeError(r.Context(), w, CodeInternalError, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": result}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
