package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kayuse/usekudibackend/internal/classify"
	"github.com/kayuse/usekudibackend/internal/config"
	"github.com/kayuse/usekudibackend/internal/domain"
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

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		runStart(log)
	case "upload":
		runUpload(log)
	case "retry":
		runRetry(log)
	case "profile":
		runProfile(log)
	case "status":
		runStatus(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Kudi CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  start     Create a session from uploaded statements and process it")
	fmt.Println("  upload    Upload a statement PDF to GCS")
	fmt.Println("  retry     Wipe a session's derived data and reprocess it")
	fmt.Println("  profile   Print a session's financial profile")
	fmt.Println("  status    Print a session's processing status")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// wiring bundles everything a processing run needs.
type wiring struct {
	cfg      *config.Config
	store    *storebq.Store
	files    *storage.Client
	queue    *inmemory.Queue
	pipeline *session.Pipeline
}

func buildWiring(ctx context.Context, log zerolog.Logger) (*wiring, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	st, err := storebq.NewStore(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		return nil, err
	}

	files, err := storage.NewClient(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}

	genaiClient, err := llm.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	categorizer := classify.NewCategorizer(st, st, classify.NewGeminiClassifier(genaiClient, cfg.ModelName), log)
	categorizer.Concurrency = cfg.ClassifyConcurrency

	jobQueue := inmemory.NewQueue(100, inmemory.NewStore())
	jobQueue.Backoff = cfg.RetryBackoff

	p := session.NewPipeline(session.Deps{
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
	jobQueue.OnExhausted = p.MarkFailed

	return &wiring{cfg: cfg, store: st, files: files, queue: jobQueue, pipeline: p}, nil
}

func (w *wiring) close() {
	_ = w.queue.Close()
	_ = w.files.Close()
	_ = w.store.Close()
}

// processAndWait consumes stage jobs in-process until the session reaches a
// terminal state.
func (w *wiring) processAndWait(ctx context.Context, log zerolog.Logger, identifier string) error {
	if err := w.queue.Start(ctx, w.pipeline.HandleJob); err != nil {
		return err
	}

	for {
		sess, err := w.store.GetSession(ctx, identifier)
		if err != nil {
			return err
		}
		switch session.Status(sess.Status) {
		case session.StatusDone:
			log.Info().Str("session", identifier).Msg("Processing complete")
			return nil
		case session.StatusFailed:
			return fmt.Errorf("session %s failed", identifier)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func runStart(log zerolog.Logger) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	name := fs.String("name", "", "Display name for the session")
	email := fs.String("email", "", "Contact email")
	customerType := fs.String("customer-type", "individual", "Customer type (individual, business)")
	uris := fs.String("gcs-uris", "", "Comma-separated GCS URIs of uploaded statement PDFs")
	wait := fs.Bool("wait", true, "Block until processing finishes")
	fs.Parse(os.Args[2:])

	if *uris == "" {
		log.Fatal().Msg("Error: --gcs-uris is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	w, err := buildWiring(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	defer w.close()

	sess := &domain.Session{
		Identifier:   uuid.NewString(),
		Name:         *name,
		Email:        *email,
		CustomerType: *customerType,
		Status:       string(session.StatusStarted),
	}
	if err := w.store.CreateSession(ctx, sess); err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}
	for _, uri := range strings.Split(*uris, ",") {
		uri = strings.TrimSpace(uri)
		if uri == "" {
			continue
		}
		file := &domain.SessionFile{SessionID: sess.ID, URI: uri}
		if err := w.store.AddSessionFile(ctx, file); err != nil {
			log.Fatal().Err(err).Str("uri", uri).Msg("Failed to add session file")
		}
	}

	if err := w.pipeline.Begin(ctx, sess.Identifier); err != nil {
		log.Fatal().Err(err).Msg("Failed to start processing")
	}
	fmt.Printf("Session %s started.\n", sess.Identifier)

	if !*wait {
		return
	}
	if err := w.processAndWait(ctx, log, sess.Identifier); err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}
	fmt.Println("Processing completed successfully.")
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local PDF file")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -file PATH [-object NAME]")
	}
	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	client, err := storage.NewClient(ctx, cfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer client.Close()

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer f.Close()

	uri, err := client.Upload(ctx, *objectName, f)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}
	fmt.Printf("Uploaded %s to %s\n", *filePath, uri)
}

func runRetry(log zerolog.Logger) {
	fs := flag.NewFlagSet("retry", flag.ExitOnError)
	identifier := fs.String("session", "", "Session identifier")
	wait := fs.Bool("wait", true, "Block until processing finishes")
	fs.Parse(os.Args[2:])

	if *identifier == "" {
		log.Fatal().Msg("Error: --session is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	w, err := buildWiring(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	defer w.close()

	if err := w.pipeline.Retry(ctx, *identifier); err != nil {
		log.Fatal().Err(err).Msg("Retry failed")
	}
	fmt.Printf("Session %s reset for reprocessing.\n", *identifier)

	if !*wait {
		return
	}
	if err := w.processAndWait(ctx, log, *identifier); err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}
	fmt.Println("Processing completed successfully.")
}

func runProfile(log zerolog.Logger) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	identifier := fs.String("session", "", "Session identifier")
	fs.Parse(os.Args[2:])

	if *identifier == "" {
		log.Fatal().Msg("Error: --session is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	st, err := storebq.NewStore(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer st.Close()

	sess, err := st.GetSession(ctx, *identifier)
	if err != nil {
		log.Fatal().Err(err).Msg("Session not found")
	}

	profile, err := engine.NewAggregator(st, cfg.SavingsCategoryID).Profile(ctx, sess.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute profile")
	}

	fmt.Println("\n=== Income Flow ===")
	fmt.Printf("Inflow:          %.2f\n", profile.IncomeFlow.Inflow)
	fmt.Printf("Outflow:         %.2f\n", profile.IncomeFlow.Outflow)
	fmt.Printf("Net income:      %.2f\n", profile.IncomeFlow.NetIncome)
	fmt.Printf("Closing balance: %.2f\n", profile.IncomeFlow.ClosingBalance)

	fmt.Println("\n=== Risk ===")
	fmt.Printf("Liquidity:       %.4f\n", profile.Risk.Liquidity)
	fmt.Printf("Concentration:   %.4f\n", profile.Risk.Concentration)
	fmt.Printf("Expense:         %.4f\n", profile.Risk.Expense)
	fmt.Printf("Volatility:      %.4f\n", profile.Risk.Volatility)

	fmt.Println("\n=== Spending Profile ===")
	fmt.Printf("Spending ratio:   %.2f\n", profile.SpendingProfile.SpendingRatio)
	fmt.Printf("Savings ratio:    %.2f\n", profile.SpendingProfile.SavingsRatio)
	fmt.Printf("Budget conscious: %.2f\n", profile.SpendingProfile.BudgetConscious)

	fmt.Printf("\n=== Expense Categories (%d) ===\n", len(profile.ExpenseCategories))
	for _, c := range profile.ExpenseCategories {
		fmt.Printf("  %-30s %.2f\n", c.CategoryName, c.Amount)
	}
	fmt.Println()
}

func runStatus(log zerolog.Logger) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	identifier := fs.String("session", "", "Session identifier")
	fs.Parse(os.Args[2:])

	if *identifier == "" {
		log.Fatal().Msg("Error: --session is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	st, err := storebq.NewStore(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer st.Close()

	sess, err := st.GetSession(ctx, *identifier)
	if err != nil {
		log.Fatal().Err(err).Msg("Session not found")
	}

	fmt.Printf("Session:  %s\n", sess.Identifier)
	fmt.Printf("Name:     %s\n", sess.Name)
	fmt.Printf("Status:   %s\n", sess.Status)
	if sess.OverallAssessmentTitle != "" {
		fmt.Printf("Summary:  %s\n", sess.OverallAssessmentTitle)
		fmt.Printf("          %s\n", sess.OverallAssessment)
	}
}
