package classify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/store"
)

// Categorizer assigns categories to a session's uncategorized transactions.
// Runs are idempotent: already-categorized rows are never touched, so a
// second pass with no new transactions updates nothing.
type Categorizer struct {
	accounts   store.AccountRepository
	categories store.CategoryRepository
	classifier Classifier
	log        zerolog.Logger

	// Concurrency caps the in-flight classification requests.
	Concurrency int
}

func NewCategorizer(accounts store.AccountRepository, categories store.CategoryRepository, classifier Classifier, log zerolog.Logger) *Categorizer {
	return &Categorizer{
		accounts:    accounts,
		categories:  categories,
		classifier:  classifier,
		log:         log,
		Concurrency: 4,
	}
}

// Categorize classifies every uncategorized transaction of the session and
// returns the number of rows updated. Per-transaction collaborator failures
// are logged and skipped; those rows stay uncategorized for the next pass.
func (c *Categorizer) Categorize(ctx context.Context, sessionID string) (int, error) {
	txs, err := c.accounts.ListUncategorized(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("categorize: list uncategorized: %w", err)
	}
	if len(txs) == 0 {
		return 0, nil
	}

	categories, err := c.categories.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("categorize: list categories: %w", err)
	}
	if len(categories) == 0 {
		return 0, fmt.Errorf("categorize: category taxonomy is empty")
	}

	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var updated int64
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, tx := range txs {
		wg.Add(1)
		go func(tx *domain.SessionTransaction) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			categoryID, err := c.classifier.Classify(ctx, tx, categories)
			if err != nil {
				c.log.Warn().Err(err).
					Str("transaction_id", tx.ID).
					Msg("classification failed; leaving for next pass")
				return
			}
			if categoryID == "" {
				return
			}

			ok, err := c.accounts.AssignCategory(ctx, tx.ID, categoryID)
			if err != nil {
				c.log.Warn().Err(err).
					Str("transaction_id", tx.ID).
					Msg("assigning category failed")
				return
			}
			if ok {
				atomic.AddInt64(&updated, 1)
			}
		}(tx)
	}

	wg.Wait()
	return int(atomic.LoadInt64(&updated)), nil
}
