// Package app wires configuration, adapters and features into a running
// service.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"brainweave/backend/features/ingest"
	"brainweave/backend/features/job"
	"brainweave/backend/features/stats"
	"brainweave/backend/internal/adapter/gemini"
	"brainweave/backend/internal/adapter/openai"
	"brainweave/backend/internal/adapter/youtube"
	"brainweave/backend/internal/config"
	"brainweave/backend/internal/metadata"
	"brainweave/backend/internal/middleware"
	"brainweave/backend/internal/transcript"
	"brainweave/backend/internal/vault"
	"brainweave/backend/internal/worker"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler       http.Handler
	IngestService *ingest.Service
	TaskConsumer  *worker.TaskConsumer

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	store *vault.Store,
	taskPub TaskPublisher,
	logger *slog.Logger,
) (*App, error) {
	// Transcript retrieval
	ytClient := youtube.NewClient()
	transcripts := transcript.NewExtractor(ytClient)

	// LLM providers. Only configured providers are wired; the ingest
	// service rejects requests for anything else.
	extractors := make(map[string]ingest.MetadataExtractor)
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		extractors["gemini"] = metadata.NewExtractor(gc)
	}
	if cfg.OpenAIAPIKey != "" {
		extractors["openai"] = metadata.NewExtractor(openai.NewClient(cfg.OpenAIAPIKey))
	}

	// Feature: Ingest
	ingestService := ingest.NewService(transcripts, extractors, store, taskPub, ingest.Options{
		DefaultProvider:   cfg.DefaultProvider,
		DefaultLanguage:   cfg.DefaultLanguage,
		ChunkMaxChars:     cfg.ChunkMaxChars,
		ChunkOverlap:      cfg.ChunkOverlap,
		LLMTimeout:        time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		RateLimitAttempts: cfg.RateLimitRetryAttempts,
		RateLimitDelay:    time.Duration(cfg.RateLimitRetryDelaySeconds) * time.Second,
	})
	ingestHandler := ingest.NewHandler(ingestService)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub, logger)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(store, jobRepo)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /ingest/youtube", middleware.CorrelationID(enableCORS(ingestHandler.IngestYouTube)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"name":"brainweave-backend","status":"running"}`))
	})

	// Worker (Task Consumer) Setup
	taskConsumer := worker.NewTaskConsumer(ingestService, jobService)

	return &App{
		Handler:       mux,
		IngestService: ingestService,
		TaskConsumer:  taskConsumer,
		port:          cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
