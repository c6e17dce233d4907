package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// fakeExtractor records the cleaned text it receives and tracks how many
// calls run at once.
type fakeExtractor struct {
	mu       sync.Mutex
	seen     map[int]string
	inFlight int32
	peak     int32
	failPage int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{seen: map[int]string{}, failPage: -1}
}

func (f *fakeExtractor) ExtractPage(_ context.Context, pageText string, pageIndex int) (domain.PartialStatement, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, cur) {
			break
		}
	}

	f.mu.Lock()
	f.seen[pageIndex] = pageText
	f.mu.Unlock()

	if pageIndex == f.failPage {
		return domain.PartialStatement{}, errors.New("extraction failed")
	}
	desc := fmt.Sprintf("page-%d", pageIndex)
	return domain.PartialStatement{
		PageIndex:    pageIndex,
		Transactions: []domain.StatementTransaction{{Description: &desc}},
	}, nil
}

func TestExtractPages_ResultsAlignedWithPageIndex(t *testing.T) {
	fake := newFakeExtractor()
	pages := []string{"first  page", "second\tpage", "third page"}

	results := ExtractPages(context.Background(), fake, pages, 2)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.PageIndex != i {
			t.Errorf("result %d has PageIndex %d", i, r.PageIndex)
		}
		if r.Err != nil {
			t.Errorf("result %d error = %v", i, r.Err)
		}
	}
	if fake.seen[0] != "first page" {
		t.Errorf("page 0 text = %q, want cleaned text", fake.seen[0])
	}
}

func TestExtractPages_FailedPageDoesNotAbortOthers(t *testing.T) {
	fake := newFakeExtractor()
	fake.failPage = 1

	results := ExtractPages(context.Background(), fake, []string{"a", "b", "c"}, 4)
	if results[1].Err == nil {
		t.Error("expected error on failed page")
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy pages errored: %v, %v", results[0].Err, results[2].Err)
	}
}

func TestExtractPages_HonorsConcurrencyCap(t *testing.T) {
	fake := newFakeExtractor()
	pages := make([]string, 20)
	for i := range pages {
		pages[i] = "text"
	}

	ExtractPages(context.Background(), fake, pages, 3)
	if peak := atomic.LoadInt32(&fake.peak); peak > 3 {
		t.Errorf("peak in-flight extractions = %d, want <= 3", peak)
	}
}
