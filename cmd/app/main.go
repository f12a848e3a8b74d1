// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ruga-file-analysis/internal/config"
	"ruga-file-analysis/internal/domain/ports/adapter"
	aiAdapters "ruga-file-analysis/internal/infra/adapters/ai"
	"ruga-file-analysis/internal/infra/adapters/parse"
	"ruga-file-analysis/internal/infra/jobs"
	"ruga-file-analysis/internal/infra/logging"
	"ruga-file-analysis/internal/infra/metrics"
	"ruga-file-analysis/internal/infra/parser"
	"ruga-file-analysis/internal/infra/plan"
	"ruga-file-analysis/internal/infra/ruga"
	"ruga-file-analysis/internal/infra/vector"
	"ruga-file-analysis/internal/infra/web"
	"ruga-file-analysis/internal/infra/worker"
	"ruga-file-analysis/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (offline AI stubs allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- AI adapter (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	var embedder adapter.EmbeddingAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		gem, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		ai = gem
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
		// Gemini carries no embeddings here; OpenAI or the stub fills in.
		if cfg.AI.OpenAIKey != "" {
			oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.EmbeddingModel, cfg.AI.MaxOutputTokens)
			if err != nil {
				log.Fatalf("openai adapter: %v", err)
			}
			embedder = oa
		} else {
			embedder = aiAdapters.NewNoOpAdapter()
			logger.Warn().Msg("no embedding provider; retrieval uses offline hashing embeddings")
		}
	case cfg.AI.OpenAIKey != "":
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.EmbeddingModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		ai, embedder = oa, oa
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		noop := aiAdapters.NewNoOpAdapter()
		ai, embedder = noop, noop
		logger.Warn().Msg("AI adapter: offline noop (dev mode)")
	default:
		log.Fatalf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}

	// ---- Document converter (optional) ----
	var docParser adapter.DocumentParser
	if cfg.AI.ParserURL != "" {
		docParser, err = parse.NewHTTPParser(cfg.AI.ParserURL)
		if err != nil {
			log.Fatalf("document parser: %v", err)
		}
		logger.Info().Str("url", cfg.AI.ParserURL).Msg("document converter enabled")
	} else {
		logger.Warn().Msg("no document converter configured; only plain-text formats are analyzable")
	}

	// ---- Infra ----
	chunker, err := parser.NewChunker(parser.ChunkConfig{
		MaxTokens: cfg.Retrieval.ChunkTokens,
		Overlap:   cfg.Retrieval.ChunkOverlap,
	})
	if err != nil {
		log.Fatalf("chunker: %v", err)
	}

	metaStore := ruga.NewStore()
	registry := jobs.NewRegistry(logger)
	index := vector.NewIndex(embedder, chunker, logger)
	planStore := plan.NewStore()

	analyzer := worker.NewAnalyzer(registry, metaStore, ai, docParser, chunker, index, cfg.Analysis.MaxInputTokens, logger)
	pool := worker.NewPool(cfg.Analysis.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	filesUC := usecase.NewFilesUC(metaStore, logger)
	analysisUC := usecase.NewAnalysisUC(registry, metaStore, analyzer, pool, docParser, logger)
	organizeUC := usecase.NewOrganizeUC(metaStore, planStore, ai, logger)
	chatUC := usecase.NewChatUC(index, ai, cfg.Retrieval.TopK, logger)

	// ---- HTTP server ----
	srv := web.NewServer(filesUC, analysisUC, organizeUC, chatUC, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
