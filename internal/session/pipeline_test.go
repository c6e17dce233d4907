package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kayuse/usekudibackend/internal/classify"
	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/engine"
	"github.com/kayuse/usekudibackend/internal/insight"
	"github.com/kayuse/usekudibackend/internal/jobs"
	"github.com/kayuse/usekudibackend/internal/logger"
	"github.com/kayuse/usekudibackend/internal/pdf"
	"github.com/kayuse/usekudibackend/internal/store/memory"
)

// fakeDoc is one statement document addressed by its URI.
type fakeDoc struct {
	password string
	pages    []string
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	return []byte(uri), nil
}

type fakeOpener struct {
	docs map[string]fakeDoc
}

func (o fakeOpener) Probe(data []byte) pdf.ProbeFunc {
	doc := o.docs[string(data)]
	return func(password string) error {
		if password == doc.password {
			return nil
		}
		return errors.New("wrong password")
	}
}

func (o fakeOpener) PageTexts(data []byte, _ string) ([]string, error) {
	return o.docs[string(data)].pages, nil
}

// stubExtractor emits one transaction per page, description equal to the
// page text. Page 0 supplies the header.
type stubExtractor struct{}

func (stubExtractor) ExtractPage(_ context.Context, pageText string, pageIndex int) (domain.PartialStatement, error) {
	ps := domain.PartialStatement{PageIndex: pageIndex}
	if pageIndex == 0 {
		name, number, currency, closing := "Main Checking", "0011223344", "NGN", 500.0
		ps.AccountName = &name
		ps.AccountNumber = &number
		ps.Currency = &currency
		ps.ClosingBalance = &closing
	}

	date := time.Date(2025, 3, 3+pageIndex, 0, 0, 0, 0, time.UTC)
	desc := pageText
	txType, amount := domain.TypeDebit, 100.0
	if strings.HasPrefix(pageText, "salary") {
		txType, amount = domain.TypeCredit, 1000.0
	}
	ps.Transactions = []domain.StatementTransaction{{
		Date:        &date,
		Description: &desc,
		Type:        &txType,
		Amount:      &amount,
	}}
	return ps, nil
}

// stubClassifier puts transfers into the peer-to-peer category and
// everything else into the first category.
type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, tx *domain.SessionTransaction, categories []*domain.Category) (string, error) {
	if strings.Contains(tx.Description, "transfer") {
		for _, c := range categories {
			if c.ID == "cat-p2p" {
				return c.ID, nil
			}
		}
	}
	return categories[0].ID, nil
}

type stubGenerator struct{}

func (stubGenerator) Insights(_ context.Context, in insight.AnalysisInput) ([]*domain.Insight, error) {
	return []*domain.Insight{{SessionID: in.SessionID, Title: "Spending is steady", Description: "d", Priority: "low", Type: "spending"}}, nil
}

func (stubGenerator) Swot(_ context.Context, in insight.AnalysisInput) ([]*domain.SwotEntry, error) {
	return []*domain.SwotEntry{{SessionID: in.SessionID, Analysis: "Regular income", Type: "strength"}}, nil
}

func (stubGenerator) SavingsPotentials(_ context.Context, in insight.AnalysisInput) ([]*domain.SavingsPotential, error) {
	return []*domain.SavingsPotential{{SessionID: in.SessionID, Potential: "Cut transfers", Amount: 50}}, nil
}

func (stubGenerator) OverallAssessment(_ context.Context, _ insight.AnalysisInput) (domain.Assessment, error) {
	return domain.Assessment{Title: "Stable", Body: "Looks healthy."}, nil
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) AnalysisReady(_ context.Context, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

// recordingPublisher collects published jobs so the test can drive the
// pipeline synchronously.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []*jobs.SessionStageJob
}

func (r *recordingPublisher) PublishSessionStage(_ context.Context, job *jobs.SessionStageJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) take(i int) (*jobs.SessionStageJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= len(r.jobs) {
		return nil, false
	}
	return r.jobs[i], true
}

type fixture struct {
	store     *memory.Store
	pipeline  *Pipeline
	publisher *recordingPublisher
	notifier  *countingNotifier
	session   *domain.Session
	next      int
}

func newFixture(t *testing.T, docs map[string]fakeDoc) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.New()

	st := memory.NewStore()
	st.SeedCategories([]*domain.Category{
		{ID: "cat-other", Name: "Everyday"},
		{ID: "cat-p2p", Name: "Transfers"},
		{ID: "cat-savings", Name: "Savings"},
	})

	sess := &domain.Session{Identifier: "tok-1", Name: "Test", Email: "t@example.com", CustomerType: "individual", Status: string(StatusStarted)}
	if err := st.CreateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	for uri := range docs {
		if err := st.AddSessionFile(ctx, &domain.SessionFile{SessionID: sess.ID, URI: uri}); err != nil {
			t.Fatal(err)
		}
	}

	unlocker := pdf.NewUnlocker(log)
	unlocker.MaxPasswordLength = 2

	publisher := &recordingPublisher{}
	notifier := &countingNotifier{}
	p := NewPipeline(Deps{
		Store:                st,
		Fetcher:              fakeFetcher{},
		Opener:               fakeOpener{docs: docs},
		Unlocker:             unlocker,
		Extractor:            stubExtractor{},
		Categorizer:          classify.NewCategorizer(st, st, stubClassifier{}, log),
		Aggregator:           engine.NewAggregator(st, "cat-savings"),
		Generator:            stubGenerator{},
		Notifier:             notifier,
		Publisher:            publisher,
		Log:                  log,
		ExtractConcurrency:   2,
		PeerToPeerCategoryID: "cat-p2p",
	})

	return &fixture{store: st, pipeline: p, publisher: publisher, notifier: notifier, session: sess}
}

// drive runs every not-yet-handled published job to completion, in publish
// order.
func (f *fixture) drive(t *testing.T) {
	t.Helper()
	for {
		job, ok := f.publisher.take(f.next)
		if !ok {
			return
		}
		f.next++
		if err := f.pipeline.HandleJob(context.Background(), job); err != nil {
			t.Fatalf("stage %s failed: %v", job.Stage, err)
		}
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]fakeDoc{
		"gs://bucket/stmt.pdf": {password: "", pages: []string{"salary March", "transfer to ada", "groceries"}},
	})

	if err := f.pipeline.Begin(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	f.drive(t)

	sess, err := f.store.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Status != string(StatusDone) {
		t.Errorf("final status = %q, want done", sess.Status)
	}
	if sess.OverallAssessmentTitle != "Stable" {
		t.Errorf("assessment title = %q", sess.OverallAssessmentTitle)
	}
	if f.notifier.calls != 1 {
		t.Errorf("notifier called %d times, want 1", f.notifier.calls)
	}

	accounts, err := f.store.ListAccounts(ctx, f.session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].CurrentBalance != 500 {
		t.Fatalf("accounts = %+v, want one with closing balance 500", accounts)
	}

	txs, err := f.store.ListTransactions(ctx, f.session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	for _, tx := range txs {
		if tx.CategoryID == nil {
			t.Errorf("transaction %q left uncategorized", tx.Description)
		}
	}

	benefs := f.store.Beneficiaries(f.session.ID)
	if len(benefs) != 1 || benefs[0].Name != "transfer to ada" {
		t.Errorf("beneficiaries = %+v", benefs)
	}
	if got := f.store.Insights(f.session.ID); len(got) != 1 || !got[0].IsLatest {
		t.Errorf("insights = %+v", got)
	}
	if got := f.store.SwotEntries(f.session.ID); len(got) != 1 {
		t.Errorf("swot entries = %+v", got)
	}
	if got := f.store.SavingsPotentials(f.session.ID); len(got) != 1 {
		t.Errorf("savings potentials = %+v", got)
	}
}

func TestPipeline_LockedFileIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]fakeDoc{
		"gs://bucket/open.pdf":   {password: "", pages: []string{"groceries"}},
		"gs://bucket/locked.pdf": {password: "secret99X", pages: []string{"never seen"}},
	})

	if err := f.pipeline.Begin(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	f.drive(t)

	sess, _ := f.store.GetSession(ctx, "tok-1")
	if sess.Status != string(StatusDone) {
		t.Errorf("final status = %q, want done despite the locked file", sess.Status)
	}
	accounts, _ := f.store.ListAccounts(ctx, f.session.ID)
	if len(accounts) != 1 {
		t.Errorf("got %d accounts, want 1 (locked file skipped)", len(accounts))
	}
}

func TestPipeline_DiscoveredPasswordIsCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]fakeDoc{
		"gs://bucket/pin.pdf": {password: "07", pages: []string{"groceries"}},
	})

	if err := f.pipeline.Begin(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	f.drive(t)

	files, err := f.store.ListSessionFiles(ctx, f.session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if files[0].Password == nil || *files[0].Password != "07" {
		t.Errorf("cached password = %v, want \"07\"", files[0].Password)
	}
}

func TestPipeline_RetryResetsDerivedData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]fakeDoc{
		"gs://bucket/stmt.pdf": {password: "", pages: []string{"salary March", "transfer to ada"}},
	})

	if err := f.pipeline.Begin(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	f.drive(t)

	if err := f.pipeline.Retry(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	sess, _ := f.store.GetSession(ctx, "tok-1")
	if sess.Status != string(StatusInitializingStatements) {
		t.Fatalf("status after retry = %q, want initializing_statements", sess.Status)
	}

	f.drive(t)

	sess, _ = f.store.GetSession(ctx, "tok-1")
	if sess.Status != string(StatusDone) {
		t.Errorf("status after reprocessing = %q, want done", sess.Status)
	}
	// One account from each full run; the retry cleanup removed the first.
	accounts, _ := f.store.ListAccounts(ctx, f.session.ID)
	if len(accounts) != 1 {
		t.Errorf("got %d accounts after retry, want 1", len(accounts))
	}
	txs, _ := f.store.ListTransactions(ctx, f.session.ID)
	if len(txs) != 2 {
		t.Errorf("got %d transactions after retry, want 2", len(txs))
	}
}

func TestPipeline_MarkFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]fakeDoc{})

	if err := f.store.UpdateSessionStatus(ctx, "tok-1", string(StatusCategorizing)); err != nil {
		t.Fatal(err)
	}
	job := &jobs.SessionStageJob{SessionIdentifier: "tok-1", Stage: string(StatusCategorizing), Error: "boom"}
	if err := f.pipeline.MarkFailed(ctx, job); err != nil {
		t.Fatal(err)
	}

	sess, _ := f.store.GetSession(ctx, "tok-1")
	if sess.Status != string(StatusFailed) {
		t.Errorf("status = %q, want failed", sess.Status)
	}
	if f.notifier.calls != 0 {
		t.Errorf("notifier called %d times for a failed session, want 0", f.notifier.calls)
	}
}

func TestPipeline_MarkFailedLeavesDoneAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]fakeDoc{})

	if err := f.store.UpdateSessionStatus(ctx, "tok-1", string(StatusDone)); err != nil {
		t.Fatal(err)
	}
	job := &jobs.SessionStageJob{SessionIdentifier: "tok-1", Stage: string(StatusProcessedAnalysis)}
	if err := f.pipeline.MarkFailed(ctx, job); err != nil {
		t.Fatal(err)
	}
	sess, _ := f.store.GetSession(ctx, "tok-1")
	if sess.Status != string(StatusDone) {
		t.Errorf("status = %q, want done untouched", sess.Status)
	}
}
