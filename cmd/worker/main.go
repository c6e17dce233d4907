package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kayuse/usekudibackend/internal/classify"
	"github.com/kayuse/usekudibackend/internal/config"
	"github.com/kayuse/usekudibackend/internal/engine"
	"github.com/kayuse/usekudibackend/internal/extract"
	"github.com/kayuse/usekudibackend/internal/insight"
	"github.com/kayuse/usekudibackend/internal/jobs/inmemory"
	"github.com/kayuse/usekudibackend/internal/llm"
	"github.com/kayuse/usekudibackend/internal/logger"
	"github.com/kayuse/usekudibackend/internal/notify"
	"github.com/kayuse/usekudibackend/internal/pdf"
	"github.com/kayuse/usekudibackend/internal/session"
	"github.com/kayuse/usekudibackend/internal/storage"
	storebq "github.com/kayuse/usekudibackend/internal/store/bigquery"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := storebq.NewStore(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer st.Close()

	files, err := storage.NewClient(ctx, cfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer files.Close()

	genaiClient, err := llm.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	categorizer := classify.NewCategorizer(st, st, classify.NewGeminiClassifier(genaiClient, cfg.ModelName), log)
	categorizer.Concurrency = cfg.ClassifyConcurrency

	// In production, this would be replaced with Cloud Tasks or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)
	jobQueue.Backoff = cfg.RetryBackoff

	pipeline := session.NewPipeline(session.Deps{
		Store:                st,
		Fetcher:              files,
		Opener:               session.PDFOpener{},
		Unlocker:             pdf.NewUnlocker(log),
		Extractor:            extract.NewGeminiExtractor(genaiClient, cfg.ModelName),
		Categorizer:          categorizer,
		Aggregator:           engine.NewAggregator(st, cfg.SavingsCategoryID),
		Generator:            insight.NewGeminiGenerator(genaiClient, cfg.ModelName),
		Notifier:             notify.NewLogNotifier(log, cfg.AppBaseURL),
		Publisher:            jobQueue,
		Log:                  log,
		ExtractConcurrency:   cfg.ExtractConcurrency,
		PeerToPeerCategoryID: cfg.PeerToPeerCategoryID,
	})
	jobQueue.OnExhausted = pipeline.MarkFailed

	log.Info().Msg("Starting worker service")

	if err := jobQueue.Start(ctx, pipeline.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
