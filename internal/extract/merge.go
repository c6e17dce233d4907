package extract

import (
	"errors"
	"sort"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// ErrNoPages reports a merge with no extracted pages to combine.
var ErrNoPages = errors.New("extract: no extracted pages to merge")

// Merge combines per-page partial statements into one statement. Pages are
// sorted by page index before merging, so the result is independent of the
// order in which concurrent extractions completed.
//
// Header fields come from the first page that supplies them. The closing
// balance prefers the first page's value and falls back to the last page
// reporting one. Transactions are concatenated in page order, preserving
// intra-page order.
func Merge(pages []domain.PartialStatement) (domain.Statement, error) {
	if len(pages) == 0 {
		return domain.Statement{}, ErrNoPages
	}

	sorted := make([]domain.PartialStatement, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PageIndex < sorted[j].PageIndex })

	var s domain.Statement
	for _, p := range sorted {
		if s.AccountName == "" && p.AccountName != nil {
			s.AccountName = *p.AccountName
		}
		if s.AccountNumber == "" && p.AccountNumber != nil {
			s.AccountNumber = *p.AccountNumber
		}
		if s.Currency == "" && p.Currency != nil {
			s.Currency = *p.Currency
		}
		if s.OpeningBalance == nil && p.OpeningBalance != nil {
			v := *p.OpeningBalance
			s.OpeningBalance = &v
		}
		s.Transactions = append(s.Transactions, p.Transactions...)
	}

	if first := sorted[0]; first.ClosingBalance != nil {
		v := *first.ClosingBalance
		s.ClosingBalance = &v
	} else {
		for i := len(sorted) - 1; i > 0; i-- {
			if sorted[i].ClosingBalance != nil {
				v := *sorted[i].ClosingBalance
				s.ClosingBalance = &v
				break
			}
		}
	}

	return s, nil
}

// MergeResults merges the successful pages of an extraction fan-out,
// skipping failed ones. The skipped count lets the caller log gaps in the
// merged statement.
func MergeResults(results []PageResult) (domain.Statement, int, error) {
	pages := make([]domain.PartialStatement, 0, len(results))
	skipped := 0
	for _, r := range results {
		if r.Err != nil {
			skipped++
			continue
		}
		pages = append(pages, r.Statement)
	}
	statement, err := Merge(pages)
	if err != nil {
		return domain.Statement{}, skipped, err
	}
	return statement, skipped, nil
}
