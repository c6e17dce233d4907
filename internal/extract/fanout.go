package extract

import (
	"context"
	"sync"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// PageResult pairs one page's extraction outcome with its index. A failed
// page carries its error and leaves a gap in the merged statement rather
// than aborting the document.
type PageResult struct {
	PageIndex int
	Statement domain.PartialStatement
	Err       error
}

// ExtractPages runs the extractor over every page concurrently, gated by a
// semaphore, and waits for the full set before returning. A slow or failing
// page never blocks the others from starting, but the caller only sees
// results once all pages have resolved.
func ExtractPages(ctx context.Context, extractor PageExtractor, pages []string, concurrency int) []PageResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]PageResult, len(pages))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, text := range pages {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			statement, err := extractor.ExtractPage(ctx, CleanPageText(text), i)
			results[i] = PageResult{PageIndex: i, Statement: statement, Err: err}
		}(i, text)
	}

	wg.Wait()
	return results
}
