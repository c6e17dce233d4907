package session

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/kayuse/usekudibackend/internal/classify"
	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/engine"
	"github.com/kayuse/usekudibackend/internal/extract"
	"github.com/kayuse/usekudibackend/internal/insight"
	"github.com/kayuse/usekudibackend/internal/jobs"
	"github.com/kayuse/usekudibackend/internal/logger"
	"github.com/kayuse/usekudibackend/internal/notify"
	"github.com/kayuse/usekudibackend/internal/pdf"
	"github.com/kayuse/usekudibackend/internal/store"
)

// FileFetcher retrieves uploaded statement bytes by URI.
type FileFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// DocumentOpener turns raw statement bytes into probeable, readable
// documents. The default implementation reads PDFs; tests substitute fakes.
type DocumentOpener interface {
	Probe(data []byte) pdf.ProbeFunc
	PageTexts(data []byte, password string) ([]string, error)
}

// PDFOpener is the production DocumentOpener.
type PDFOpener struct{}

func (PDFOpener) Probe(data []byte) pdf.ProbeFunc {
	return pdf.DocumentProbe(data)
}

func (PDFOpener) PageTexts(data []byte, password string) ([]string, error) {
	return pdf.PageTexts(data, password)
}

// Deps collects the pipeline's collaborators.
type Deps struct {
	Store       store.Store
	Fetcher     FileFetcher
	Opener      DocumentOpener
	Unlocker    *pdf.Unlocker
	Extractor   extract.PageExtractor
	Categorizer *classify.Categorizer
	Aggregator  *engine.Aggregator
	Generator   insight.Generator
	Notifier    notify.Notifier
	Publisher   jobs.Publisher
	Log         zerolog.Logger

	ExtractConcurrency   int
	PeerToPeerCategoryID string
}

// Pipeline executes session stages. Each stage runs as one queued job;
// completing a stage advances the session's status and publishes the next
// stage's job.
type Pipeline struct {
	d Deps
}

func NewPipeline(d Deps) *Pipeline {
	if d.ExtractConcurrency < 1 {
		d.ExtractConcurrency = 4
	}
	return &Pipeline{d: d}
}

// Begin moves a freshly created session into the pipeline: status goes to
// initializing_statements and the first stage job is published.
func (p *Pipeline) Begin(ctx context.Context, identifier string) error {
	sess, err := p.d.Store.GetSession(ctx, identifier)
	if err != nil {
		return fmt.Errorf("session: begin: %w", err)
	}
	return p.moveTo(ctx, sess, StatusInitializingStatements)
}

// Retry resets a session for reprocessing: derived data (accounts,
// transactions, insights, SWOT rows, savings potentials, beneficiaries) is
// deleted in one cleanup, the session and its files — including cached
// passwords — survive, and the pipeline restarts at initializing_statements.
func (p *Pipeline) Retry(ctx context.Context, identifier string) error {
	sess, err := p.d.Store.GetSession(ctx, identifier)
	if err != nil {
		return fmt.Errorf("session: retry: %w", err)
	}
	if err := p.d.Store.DeleteDerivedData(ctx, sess.ID); err != nil {
		return fmt.Errorf("session: retry cleanup: %w", err)
	}
	return p.moveTo(ctx, sess, StatusInitializingStatements)
}

// MarkFailed moves a session to the failed terminal state. Wired as the
// queue's retry-exhaustion hook.
func (p *Pipeline) MarkFailed(ctx context.Context, job jobs.Job) error {
	stage, ok := job.(*jobs.SessionStageJob)
	if !ok {
		return fmt.Errorf("session: unexpected job type %T", job)
	}
	sess, err := p.d.Store.GetSession(ctx, stage.SessionIdentifier)
	if err != nil {
		return fmt.Errorf("session: mark failed: %w", err)
	}
	if !CanTransition(Status(sess.Status), StatusFailed) {
		return nil
	}
	p.d.Log.Error().
		Str("session", sess.Identifier).
		Str("stage", stage.Stage).
		Str("error", stage.Error).
		Msg("stage exhausted retries; session failed")
	return p.d.Store.UpdateSessionStatus(ctx, sess.Identifier, string(StatusFailed))
}

// HandleJob is the queue consumer entry point. A returned error triggers
// the queue's retry cycle for the same stage.
func (p *Pipeline) HandleJob(ctx context.Context, job jobs.Job) error {
	stage, ok := job.(*jobs.SessionStageJob)
	if !ok {
		return fmt.Errorf("session: unexpected job type %T", job)
	}
	return p.runStage(ctx, stage.SessionIdentifier, Status(stage.Stage))
}

func (p *Pipeline) runStage(ctx context.Context, identifier string, stage Status) error {
	sess, err := p.d.Store.GetSession(ctx, identifier)
	if err != nil {
		return fmt.Errorf("session: load %s: %w", identifier, err)
	}

	log := logger.ForStage(logger.ForSession(p.d.Log, identifier), string(stage))
	log.Info().Msg("stage starting")

	switch stage {
	case StatusInitializingStatements:
		err = p.runInitializingStatements(ctx, sess, log)
	case StatusCategorizing:
		err = p.runCategorizing(ctx, sess, log)
	case StatusAnalyzingPayments:
		err = p.runAnalyzingPayments(ctx, sess, log)
	case StatusAnalyzingTransactions:
		err = p.runAnalyzingTransactions(ctx, sess, log)
	case StatusAnalyzingFinancialProfile:
		err = p.runAnalyzingFinancialProfile(ctx, sess, log)
	case StatusAnalyzingInsights:
		err = p.runAnalyzingInsights(ctx, sess)
	case StatusAnalyzingSwot:
		err = p.runAnalyzingSwot(ctx, sess)
	case StatusAnalyzingSavingsPotential:
		err = p.runAnalyzingSavingsPotential(ctx, sess)
	case StatusProcessedAnalysis:
		err = p.runProcessedAnalysis(ctx, sess)
	case StatusDone:
		err = p.runDone(ctx, sess)
	default:
		return fmt.Errorf("session: no stage handler for status %q", stage)
	}
	if err != nil {
		log.Error().Err(err).Msg("stage failed")
		return err
	}

	log.Info().Msg("stage complete")
	return p.advance(ctx, sess, stage)
}

// advance moves the session to the stage after the one that just completed
// and publishes its job. Completing done ends the pipeline.
func (p *Pipeline) advance(ctx context.Context, sess *domain.Session, completed Status) error {
	next, ok := Next(completed)
	if !ok {
		return nil
	}
	return p.moveTo(ctx, sess, next)
}

func (p *Pipeline) moveTo(ctx context.Context, sess *domain.Session, next Status) error {
	if _, err := Transition(Status(sess.Status), next); err != nil {
		return err
	}
	if err := p.d.Store.UpdateSessionStatus(ctx, sess.Identifier, string(next)); err != nil {
		return fmt.Errorf("session: update status: %w", err)
	}
	sess.Status = string(next)
	return p.d.Publisher.PublishSessionStage(ctx, &jobs.SessionStageJob{
		SessionID:         sess.ID,
		SessionIdentifier: sess.Identifier,
		Stage:             string(next),
	})
}

// runInitializingStatements processes the session's files in upload order:
// unlock, per-page extraction fan-out, merge, account creation, transaction
// insert. A file that stays locked after the exhaustive search is skipped;
// the rest of the session continues.
func (p *Pipeline) runInitializingStatements(ctx context.Context, sess *domain.Session, log zerolog.Logger) error {
	files, err := p.d.Store.ListSessionFiles(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("list session files: %w", err)
	}

	for _, f := range files {
		data, err := p.d.Fetcher.Fetch(ctx, f.URI)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", f.URI, err)
		}

		password, err := p.d.Unlocker.Unlock(ctx, p.d.Opener.Probe(data), f.Password)
		if errors.Is(err, pdf.ErrPasswordNotFound) {
			log.Warn().Str("file", f.URI).Msg("file still locked after exhaustive search; skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("unlock %s: %w", f.URI, err)
		}
		if f.Password == nil && password != "" {
			if err := p.d.Store.SetFilePassword(ctx, f.ID, password); err != nil {
				return fmt.Errorf("cache password for %s: %w", f.URI, err)
			}
		}

		texts, err := p.d.Opener.PageTexts(data, password)
		if err != nil {
			return fmt.Errorf("read pages of %s: %w", f.URI, err)
		}

		results := extract.ExtractPages(ctx, p.d.Extractor, texts, p.d.ExtractConcurrency)
		statement, skipped, err := extract.MergeResults(results)
		if errors.Is(err, extract.ErrNoPages) {
			log.Warn().Str("file", f.URI).Msg("no extractable pages; skipping file")
			continue
		}
		if err != nil {
			return fmt.Errorf("merge %s: %w", f.URI, err)
		}
		if skipped > 0 {
			log.Warn().Str("file", f.URI).Int("pages_skipped", skipped).
				Msg("statement merged with page gaps")
		}

		if err := p.persistStatement(ctx, sess, f, statement); err != nil {
			return fmt.Errorf("persist statement of %s: %w", f.URI, err)
		}
	}
	return nil
}

func (p *Pipeline) persistStatement(ctx context.Context, sess *domain.Session, f *domain.SessionFile, statement domain.Statement) error {
	account := &domain.SessionAccount{
		SessionID:     sess.ID,
		AccountName:   statement.AccountName,
		AccountNumber: statement.AccountNumber,
		Currency:      statement.Currency,
	}
	if statement.ClosingBalance != nil {
		account.CurrentBalance = *statement.ClosingBalance
	}
	if f.BankID != nil {
		account.BankID = *f.BankID
	}
	if err := p.d.Store.CreateAccount(ctx, account); err != nil {
		return err
	}

	rows := make([]*domain.SessionTransaction, 0, len(statement.Transactions))
	for _, tx := range statement.Transactions {
		if !tx.Complete() {
			continue
		}
		row := &domain.SessionTransaction{
			AccountID:       account.ID,
			Currency:        statement.Currency,
			Date:            *tx.Date,
			Amount:          math.Abs(*tx.Amount),
			BalanceAfter:    tx.BalanceAfter,
			TransactionType: *tx.Type,
			Description:     *tx.Description,
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	return p.d.Store.InsertTransactions(ctx, rows)
}

func (p *Pipeline) runCategorizing(ctx context.Context, sess *domain.Session, log zerolog.Logger) error {
	updated, err := p.d.Categorizer.Categorize(ctx, sess.ID)
	if err != nil {
		return err
	}
	log.Info().Int("updated", updated).Msg("transactions categorized")
	return nil
}

func (p *Pipeline) runAnalyzingPayments(ctx context.Context, sess *domain.Session, log zerolog.Logger) error {
	txs, err := p.d.Store.ListTransactions(ctx, sess.ID)
	if err != nil {
		return err
	}
	rows := engine.TopBeneficiaries(sess.ID, txs, p.d.PeerToPeerCategoryID)
	if len(rows) == 0 {
		log.Info().Msg("no transfer beneficiaries found")
		return nil
	}
	if err := p.d.Store.InsertBeneficiaries(ctx, rows); err != nil {
		return err
	}
	log.Info().Int("beneficiaries", len(rows)).Msg("top beneficiaries saved")
	return nil
}

// runAnalyzingTransactions derives the weekly trends for both directions.
// Trends are recomputed on demand by consumers; this stage is the data
// consistency checkpoint between categorization and profile analysis.
func (p *Pipeline) runAnalyzingTransactions(ctx context.Context, sess *domain.Session, log zerolog.Logger) error {
	txs, names, err := p.transactionsWithNames(ctx, sess.ID)
	if err != nil {
		return err
	}
	income := engine.WeeklyTrends(txs, names, domain.TypeCredit)
	spending := engine.WeeklyTrends(txs, names, domain.TypeDebit)
	log.Info().
		Int("income_weeks", len(income)).
		Int("spending_weeks", len(spending)).
		Msg("weekly trends derived")
	return nil
}

func (p *Pipeline) runAnalyzingFinancialProfile(ctx context.Context, sess *domain.Session, log zerolog.Logger) error {
	profile, err := p.d.Aggregator.Profile(ctx, sess.ID)
	if err != nil {
		return err
	}
	log.Info().
		Float64("net_income", profile.IncomeFlow.NetIncome).
		Float64("spending_ratio", profile.SpendingProfile.SpendingRatio).
		Msg("financial profile computed")
	return nil
}

func (p *Pipeline) runAnalyzingInsights(ctx context.Context, sess *domain.Session) error {
	in, err := p.analysisInput(ctx, sess)
	if err != nil {
		return err
	}
	insights, err := p.d.Generator.Insights(ctx, in)
	if err != nil {
		return err
	}
	return p.d.Store.ReplaceInsights(ctx, sess.ID, insights)
}

func (p *Pipeline) runAnalyzingSwot(ctx context.Context, sess *domain.Session) error {
	in, err := p.analysisInput(ctx, sess)
	if err != nil {
		return err
	}
	entries, err := p.d.Generator.Swot(ctx, in)
	if err != nil {
		return err
	}
	return p.d.Store.InsertSwotEntries(ctx, entries)
}

func (p *Pipeline) runAnalyzingSavingsPotential(ctx context.Context, sess *domain.Session) error {
	in, err := p.analysisInput(ctx, sess)
	if err != nil {
		return err
	}
	rows, err := p.d.Generator.SavingsPotentials(ctx, in)
	if err != nil {
		return err
	}
	return p.d.Store.InsertSavingsPotentials(ctx, rows)
}

func (p *Pipeline) runProcessedAnalysis(ctx context.Context, sess *domain.Session) error {
	in, err := p.analysisInput(ctx, sess)
	if err != nil {
		return err
	}
	assessment, err := p.d.Generator.OverallAssessment(ctx, in)
	if err != nil {
		return err
	}
	return p.d.Store.SetOverallAssessment(ctx, sess.Identifier, assessment)
}

// runDone notifies once. The notifier is not invoked for failed sessions.
func (p *Pipeline) runDone(ctx context.Context, sess *domain.Session) error {
	return p.d.Notifier.AnalysisReady(ctx, sess.Identifier, sess.Email)
}

func (p *Pipeline) transactionsWithNames(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, map[string]string, error) {
	txs, err := p.d.Store.ListTransactions(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	categories, err := p.d.Store.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return txs, names, nil
}

func (p *Pipeline) analysisInput(ctx context.Context, sess *domain.Session) (insight.AnalysisInput, error) {
	profile, err := p.d.Aggregator.Profile(ctx, sess.ID)
	if err != nil {
		return insight.AnalysisInput{}, err
	}
	txs, names, err := p.transactionsWithNames(ctx, sess.ID)
	if err != nil {
		return insight.AnalysisInput{}, err
	}
	return insight.AnalysisInput{
		SessionID:    sess.ID,
		CustomerType: sess.CustomerType,
		Profile:      *profile,
		IncomeTrends: engine.WeeklyTrends(txs, names, domain.TypeCredit),
		SpendTrends:  engine.WeeklyTrends(txs, names, domain.TypeDebit),
		Recurring:    engine.RecurringExpenses(txs),
		TopSpend:     profile.ExpenseCategories,
	}, nil
}
