// Package insight generates the narrative layer of the analysis: insights,
// SWOT entries, savings potentials and the overall assessment.
package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// AnalysisInput is everything the narrative generator sees about a session.
type AnalysisInput struct {
	SessionID    string
	CustomerType string
	Profile      domain.FinancialProfile
	IncomeTrends []domain.WeeklyTrend
	SpendTrends  []domain.WeeklyTrend
	Recurring    []domain.RecurringExpense
	TopSpend     []domain.CategoryAmount
}

// Generator produces narrative output from the numeric analysis. Content
// quality is the collaborator's concern; callers only rely on the shapes.
type Generator interface {
	Insights(ctx context.Context, in AnalysisInput) ([]*domain.Insight, error)
	Swot(ctx context.Context, in AnalysisInput) ([]*domain.SwotEntry, error)
	SavingsPotentials(ctx context.Context, in AnalysisInput) ([]*domain.SavingsPotential, error)
	OverallAssessment(ctx context.Context, in AnalysisInput) (domain.Assessment, error)
}

// analysisContext renders the input as a JSON block shared by every prompt.
func analysisContext(in AnalysisInput) (string, error) {
	payload := map[string]interface{}{
		"customer_type": in.CustomerType,
		"income_flow": map[string]float64{
			"inflow":          in.Profile.IncomeFlow.Inflow,
			"outflow":         in.Profile.IncomeFlow.Outflow,
			"net_income":      in.Profile.IncomeFlow.NetIncome,
			"closing_balance": in.Profile.IncomeFlow.ClosingBalance,
		},
		"risk": map[string]float64{
			"liquidity":     in.Profile.Risk.Liquidity,
			"concentration": in.Profile.Risk.Concentration,
			"expense":       in.Profile.Risk.Expense,
			"volatility":    in.Profile.Risk.Volatility,
		},
		"spending_profile": map[string]float64{
			"spending_ratio":   in.Profile.SpendingProfile.SpendingRatio,
			"savings_ratio":    in.Profile.SpendingProfile.SavingsRatio,
			"budget_conscious": in.Profile.SpendingProfile.BudgetConscious,
		},
		"income_categories":  categoryRows(in.Profile.IncomeCategories),
		"expense_categories": categoryRows(in.Profile.ExpenseCategories),
		"weekly_income":      trendRows(in.IncomeTrends),
		"weekly_spending":    trendRows(in.SpendTrends),
		"recurring_expenses": recurringRows(in.Recurring),
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("insight: marshal analysis context: %w", err)
	}
	return string(b), nil
}

func categoryRows(rows []domain.CategoryAmount) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]interface{}{
			"category": r.CategoryName,
			"amount":   r.Amount,
		})
	}
	return out
}

func trendRows(trends []domain.WeeklyTrend) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(trends))
	for _, w := range trends {
		out = append(out, map[string]interface{}{
			"week_starting": w.WeekStarting.Format("2006-01-02"),
			"week_ending":   w.WeekEnding.Format("2006-01-02"),
			"categories":    categoryRows(w.Categories),
		})
	}
	return out
}

func recurringRows(rows []domain.RecurringExpense) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]interface{}{
			"description":    r.Description,
			"average_amount": r.AvgAmount,
			"count":          r.Count,
			"frequency":      r.Frequency,
		})
	}
	return out
}
