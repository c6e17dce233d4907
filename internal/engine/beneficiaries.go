package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// topBeneficiaryLimit bounds how many aggregated counterparties are kept.
const topBeneficiaryLimit = 100

// TopBeneficiaries aggregates debit transactions in the peer-to-peer
// category by counterparty, ordered by total amount descending. The
// counterparty name is the normalized transaction description.
func TopBeneficiaries(sessionID string, txs []*domain.SessionTransaction, p2pCategoryID string) []*domain.Beneficiary {
	type agg struct {
		total decimal.Decimal
		count int
	}
	groups := make(map[string]*agg)
	for _, t := range txs {
		if !t.IsDebit() {
			continue
		}
		if p2pCategoryID != "" {
			if t.CategoryID == nil || *t.CategoryID != p2pCategoryID {
				continue
			}
		}
		name := strings.TrimSpace(t.Description)
		if name == "" {
			continue
		}
		g, ok := groups[name]
		if !ok {
			g = &agg{}
			groups[name] = g
		}
		g.total = g.total.Add(decimal.NewFromFloat(t.Amount))
		g.count++
	}

	out := make([]*domain.Beneficiary, 0, len(groups))
	for name, g := range groups {
		total, _ := g.total.Float64()
		out = append(out, &domain.Beneficiary{
			SessionID:        sessionID,
			Name:             name,
			TotalAmount:      total,
			TransactionCount: g.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topBeneficiaryLimit {
		out = out[:topBeneficiaryLimit]
	}
	return out
}
