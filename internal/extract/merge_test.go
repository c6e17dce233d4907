package extract

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/kayuse/usekudibackend/internal/domain"
)

func strptr(s string) *string        { return &s }
func f64ptr(f float64) *float64      { return &f }
func dateptr(t time.Time) *time.Time { return &t }

func pageWithTx(index int, descriptions ...string) domain.PartialStatement {
	p := domain.PartialStatement{PageIndex: index}
	for _, d := range descriptions {
		p.Transactions = append(p.Transactions, domain.StatementTransaction{
			Date:        dateptr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
			Description: strptr(d),
			Type:        strptr("debit"),
			Amount:      f64ptr(10),
		})
	}
	return p
}

func TestMerge_NoPages(t *testing.T) {
	if _, err := Merge(nil); !errors.Is(err, ErrNoPages) {
		t.Fatalf("Merge(nil) error = %v, want ErrNoPages", err)
	}
}

func TestMerge_HeadersFromFirstSupplyingPage(t *testing.T) {
	p0 := pageWithTx(0, "a")
	p1 := pageWithTx(1, "b")
	p1.AccountName = strptr("J Doe")
	p1.Currency = strptr("NGN")
	p2 := pageWithTx(2, "c")
	p2.AccountName = strptr("Wrong Name")
	p2.AccountNumber = strptr("0123456789")
	p2.OpeningBalance = f64ptr(400)

	got, err := Merge([]domain.PartialStatement{p0, p1, p2})
	if err != nil {
		t.Fatal(err)
	}
	if got.AccountName != "J Doe" {
		t.Errorf("AccountName = %q, want first supplying page's value", got.AccountName)
	}
	if got.AccountNumber != "0123456789" || got.Currency != "NGN" {
		t.Errorf("AccountNumber/Currency = %q/%q", got.AccountNumber, got.Currency)
	}
	if got.OpeningBalance == nil || *got.OpeningBalance != 400 {
		t.Errorf("OpeningBalance = %v, want 400", got.OpeningBalance)
	}
}

func TestMerge_ClosingBalancePrefersFirstPage(t *testing.T) {
	p0 := pageWithTx(0, "a")
	p0.ClosingBalance = f64ptr(1500)
	p1 := pageWithTx(1, "b")
	p1.ClosingBalance = f64ptr(900)

	got, err := Merge([]domain.PartialStatement{p1, p0})
	if err != nil {
		t.Fatal(err)
	}
	if got.ClosingBalance == nil || *got.ClosingBalance != 1500 {
		t.Errorf("ClosingBalance = %v, want first page's 1500", got.ClosingBalance)
	}
}

func TestMerge_ClosingBalanceFallsBackToLastReporting(t *testing.T) {
	p0 := pageWithTx(0, "a")
	p1 := pageWithTx(1, "b")
	p1.ClosingBalance = f64ptr(700)
	p2 := pageWithTx(2, "c")

	got, err := Merge([]domain.PartialStatement{p0, p1, p2})
	if err != nil {
		t.Fatal(err)
	}
	if got.ClosingBalance == nil || *got.ClosingBalance != 700 {
		t.Errorf("ClosingBalance = %v, want last non-null 700", got.ClosingBalance)
	}
}

// Merging shuffled pages must yield the same transaction order as merging
// them sorted: the result cannot depend on concurrent completion order.
func TestMerge_DeterministicUnderCompletionOrder(t *testing.T) {
	pages := []domain.PartialStatement{
		pageWithTx(0, "p0-a", "p0-b"),
		pageWithTx(1, "p1-a"),
		pageWithTx(2, "p2-a", "p2-b", "p2-c"),
		pageWithTx(3, "p3-a"),
	}
	want := []string{"p0-a", "p0-b", "p1-a", "p2-a", "p2-b", "p2-c", "p3-a"}

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]domain.PartialStatement, len(pages))
		copy(shuffled, pages)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, err := Merge(shuffled)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Transactions) != len(want) {
			t.Fatalf("trial %d: got %d transactions, want %d", trial, len(got.Transactions), len(want))
		}
		for i, w := range want {
			if *got.Transactions[i].Description != w {
				t.Fatalf("trial %d: transaction %d = %q, want %q", trial, i, *got.Transactions[i].Description, w)
			}
		}
	}
}

func TestMergeResults_SkipsFailedPages(t *testing.T) {
	results := []PageResult{
		{PageIndex: 0, Statement: pageWithTx(0, "a")},
		{PageIndex: 1, Err: errors.New("model timeout")},
		{PageIndex: 2, Statement: pageWithTx(2, "c")},
	}

	got, skipped, err := MergeResults(results)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(got.Transactions) != 2 {
		t.Errorf("got %d transactions, want 2 (gap for failed page)", len(got.Transactions))
	}
}

func TestMergeResults_AllFailed(t *testing.T) {
	results := []PageResult{
		{PageIndex: 0, Err: errors.New("boom")},
	}
	if _, skipped, err := MergeResults(results); !errors.Is(err, ErrNoPages) || skipped != 1 {
		t.Fatalf("MergeResults = skipped %d, err %v; want 1, ErrNoPages", skipped, err)
	}
}
