package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/store"
)

// Caps for the spending profile ratios.
const (
	spendingRatioCap = 200
	savingsRatioCap  = 100
)

// Aggregator derives financial profiles from persisted transactions. It
// never caches: every call recomputes from the store so the profile always
// reflects the latest categorization state.
type Aggregator struct {
	store             store.Store
	savingsCategoryID string
}

// NewAggregator creates a profile aggregator. savingsCategoryID designates
// the category whose activity counts as savings.
func NewAggregator(st store.Store, savingsCategoryID string) *Aggregator {
	return &Aggregator{
		store:             st,
		savingsCategoryID: savingsCategoryID,
	}
}

// Profile computes the full financial profile of a session.
func (a *Aggregator) Profile(ctx context.Context, sessionID string) (*domain.FinancialProfile, error) {
	accounts, err := a.store.ListAccounts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("profile: list accounts: %w", err)
	}
	txs, err := a.store.ListTransactions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("profile: list transactions: %w", err)
	}
	categories, err := a.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: list categories: %w", err)
	}

	flow := IncomeFlow(accounts, txs)
	risk := Risk(txs, flow.ClosingBalance)

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	return &domain.FinancialProfile{
		SessionID:  sessionID,
		IncomeFlow: flow,
		Risk:       risk,
		SpendingProfile: domain.SpendingProfile{
			SpendingRatio:   SpendingRatio(txs),
			SavingsRatio:    a.SavingsRatio(txs),
			BudgetConscious: BudgetConscious(risk.Volatility),
		},
		IncomeCategories:  CategoryBreakdown(txs, names, domain.TypeCredit),
		ExpenseCategories: CategoryBreakdown(txs, names, domain.TypeDebit),
	}, nil
}

// IncomeFlow sums inflow, outflow and net income over the transaction set,
// plus the closing balance across the session's accounts. Totals are summed
// exactly before converting back to float64.
func IncomeFlow(accounts []*domain.SessionAccount, txs []*domain.SessionTransaction) domain.IncomeFlow {
	inflow := decimal.Zero
	outflow := decimal.Zero
	for _, t := range txs {
		amount := decimal.NewFromFloat(t.Amount)
		switch {
		case t.IsCredit():
			inflow = inflow.Add(amount)
		case t.IsDebit():
			outflow = outflow.Add(amount)
		}
	}

	closing := decimal.Zero
	for _, acc := range accounts {
		closing = closing.Add(decimal.NewFromFloat(acc.CurrentBalance))
	}

	in, _ := inflow.Float64()
	out, _ := outflow.Float64()
	net, _ := inflow.Sub(outflow).Float64()
	bal, _ := closing.Float64()
	return domain.IncomeFlow{
		Inflow:         in,
		Outflow:        out,
		NetIncome:      net,
		ClosingBalance: bal,
	}
}

// SpendingRatio is outflow as a percentage of income, capped at 200.
// Income is floored to 1 when non-positive.
func SpendingRatio(txs []*domain.SessionTransaction) float64 {
	var income, outflow float64
	for _, t := range txs {
		switch {
		case t.IsCredit():
			income += t.Amount
		case t.IsDebit():
			outflow += t.Amount
		}
	}
	if income <= 0 {
		income = 1
	}
	return math.Min((outflow/income)*100, spendingRatioCap)
}

// SavingsRatio is the designated savings category's activity as a
// percentage of income, capped at 100. Income is floored to 1 when
// non-positive.
func (a *Aggregator) SavingsRatio(txs []*domain.SessionTransaction) float64 {
	var income, savings float64
	for _, t := range txs {
		if t.IsCredit() {
			income += t.Amount
		}
		if t.CategoryID != nil && *t.CategoryID == a.savingsCategoryID {
			savings += t.Amount
		}
	}
	if income <= 0 {
		income = 1
	}
	return math.Min((savings/income)*100, savingsRatioCap)
}

// BudgetConscious maps scaled volatility onto a 0-100 score.
func BudgetConscious(volatility float64) float64 {
	return math.Max(0, math.Min(100, (1-volatility)*100))
}

// CategoryBreakdown groups transactions of the given type by category and
// sums their amounts, one row per category with nonzero activity, ordered
// by amount descending.
func CategoryBreakdown(txs []*domain.SessionTransaction, names map[string]string, txType string) []domain.CategoryAmount {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.CategoryID == nil {
			continue
		}
		switch txType {
		case domain.TypeCredit:
			if !t.IsCredit() {
				continue
			}
		case domain.TypeDebit:
			if !t.IsDebit() {
				continue
			}
		default:
			continue
		}
		totals[*t.CategoryID] = totals[*t.CategoryID].Add(decimal.NewFromFloat(t.Amount))
	}

	out := make([]domain.CategoryAmount, 0, len(totals))
	for id, total := range totals {
		if total.IsZero() {
			continue
		}
		amount, _ := total.Float64()
		out = append(out, domain.CategoryAmount{
			CategoryID:   id,
			CategoryName: names[id],
			Amount:       amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
