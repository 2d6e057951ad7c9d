// Package stats exposes counts over the vault and the failure queue.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"brainweave/backend/internal/middleware"
)

type ArtifactCounter interface {
	Counts() (staged int, vault int, err error)
}

type JobRepo interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	artifacts ArtifactCounter
	jobRepo   JobRepo
}

func NewHandler(a ArtifactCounter, j JobRepo) *Handler {
	return &Handler{artifacts: a, jobRepo: j}
}

type StatsResponse struct {
	StagedArtifacts int `json:"staged_artifacts"`
	VaultArtifacts  int `json:"vault_artifacts"`
	FailedJobs      int `json:"failed_jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	staged, vaulted, err := h.artifacts.Counts()
	if err != nil {
		slog.ErrorContext(ctx, "failed to count artifacts", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count artifacts", http.StatusInternalServerError)
		return
	}

	jCount, err := h.jobRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		StagedArtifacts: staged,
		VaultArtifacts:  vaulted,
		FailedJobs:      jCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
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
