package classify

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/logger"
	"github.com/kayuse/usekudibackend/internal/store/memory"
)

// keywordClassifier categorizes by substring match on the description.
type keywordClassifier struct {
	calls int64
	fail  map[string]bool
}

func (k *keywordClassifier) Classify(_ context.Context, tx *domain.SessionTransaction, categories []*domain.Category) (string, error) {
	atomic.AddInt64(&k.calls, 1)
	if k.fail[tx.Description] {
		return "", errors.New("model unavailable")
	}
	for _, c := range categories {
		if strings.Contains(strings.ToLower(tx.Description), strings.ToLower(c.Name)) {
			return c.ID, nil
		}
	}
	return "", nil
}

func seedSession(t *testing.T, s *memory.Store, descriptions ...string) string {
	t.Helper()
	ctx := context.Background()

	sess := &domain.Session{Identifier: "sess-1", Status: "started"}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	acct := &domain.SessionAccount{SessionID: sess.ID, AccountName: "Main"}
	if err := s.CreateAccount(ctx, acct); err != nil {
		t.Fatal(err)
	}

	rows := make([]*domain.SessionTransaction, 0, len(descriptions))
	for i, d := range descriptions {
		rows = append(rows, &domain.SessionTransaction{
			AccountID:       acct.ID,
			Description:     d,
			TransactionType: domain.TypeDebit,
			Amount:          100,
			Date:            time.Date(2025, 2, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}
	if err := s.InsertTransactions(ctx, rows); err != nil {
		t.Fatal(err)
	}
	return sess.ID
}

func taxonomy() []*domain.Category {
	return []*domain.Category{
		{ID: "cat-groceries", Name: "Groceries"},
		{ID: "cat-transport", Name: "Transport"},
	}
}

func TestCategorize_AssignsAndCounts(t *testing.T) {
	s := memory.NewStore()
	s.SeedCategories(taxonomy())
	sessionID := seedSession(t, s, "GROCERIES MART LAGOS", "Transport card top-up", "Unknown merchant")

	c := NewCategorizer(s, s, &keywordClassifier{}, logger.New())
	updated, err := c.Categorize(context.Background(), sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 2 {
		t.Errorf("Categorize() = %d, want 2 (unknown merchant stays uncategorized)", updated)
	}

	txs, err := s.ListUncategorized(context.Background(), sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Description != "Unknown merchant" {
		t.Errorf("uncategorized leftover = %+v, want only the unknown merchant", txs)
	}
}

func TestCategorize_SecondRunUpdatesNothing(t *testing.T) {
	s := memory.NewStore()
	s.SeedCategories(taxonomy())
	sessionID := seedSession(t, s, "GROCERIES MART", "Transport fare")

	k := &keywordClassifier{}
	c := NewCategorizer(s, s, k, logger.New())

	first, err := c.Categorize(context.Background(), sessionID)
	if err != nil || first != 2 {
		t.Fatalf("first run = %d, %v; want 2, nil", first, err)
	}

	second, err := c.Categorize(context.Background(), sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Errorf("second run updated %d rows, want 0", second)
	}
	// Categorized rows are never re-sent to the collaborator.
	if calls := atomic.LoadInt64(&k.calls); calls != 2 {
		t.Errorf("classifier called %d times across both runs, want 2", calls)
	}
}

func TestCategorize_PartialFailureKeepsSuccesses(t *testing.T) {
	s := memory.NewStore()
	s.SeedCategories(taxonomy())
	sessionID := seedSession(t, s, "GROCERIES MART", "Transport fare")

	k := &keywordClassifier{fail: map[string]bool{"Transport fare": true}}
	c := NewCategorizer(s, s, k, logger.New())

	updated, err := c.Categorize(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("a failing transaction must not fail the batch: %v", err)
	}
	if updated != 1 {
		t.Errorf("Categorize() = %d, want 1", updated)
	}

	left, _ := s.ListUncategorized(context.Background(), sessionID)
	if len(left) != 1 || left[0].Description != "Transport fare" {
		t.Errorf("leftover = %+v, want the failed transaction", left)
	}
}

func TestCategorize_EmptyTaxonomyIsAnError(t *testing.T) {
	s := memory.NewStore()
	sessionID := seedSession(t, s, "anything")

	c := NewCategorizer(s, s, &keywordClassifier{}, logger.New())
	if _, err := c.Categorize(context.Background(), sessionID); err == nil {
		t.Fatal("expected error for empty category taxonomy")
	}
}

func TestCategorize_NoUncategorizedRows(t *testing.T) {
	s := memory.NewStore()
	s.SeedCategories(taxonomy())
	sess := &domain.Session{Identifier: "empty"}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	c := NewCategorizer(s, s, &keywordClassifier{}, logger.New())
	updated, err := c.Categorize(context.Background(), sess.ID)
	if err != nil || updated != 0 {
		t.Errorf("Categorize() = %d, %v; want 0, nil", updated, err)
	}
}
