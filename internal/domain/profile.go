package domain

import "time"

// IncomeFlow summarizes money movement over a session's transaction set.
type IncomeFlow struct {
	Inflow         float64
	Outflow        float64
	NetIncome      float64
	ClosingBalance float64
}

// Risk holds the four risk indicators. Volatility is log-compressed to
// [0,1]; the others are semi-bounded ratios.
type Risk struct {
	Liquidity     float64
	Concentration float64
	Expense       float64
	Volatility    float64
}

// SpendingProfile holds the capped spending/savings/budget ratios.
type SpendingProfile struct {
	SpendingRatio   float64
	SavingsRatio    float64
	BudgetConscious float64
}

// CategoryAmount is one category's summed activity.
type CategoryAmount struct {
	CategoryID   string
	CategoryName string
	Amount       float64
}

// FinancialProfile is the derived, never-cached composite of a session's
// numeric analysis. Recomputed on every request from the persisted
// transaction set.
type FinancialProfile struct {
	SessionID         string
	IncomeFlow        IncomeFlow
	Risk              Risk
	SpendingProfile   SpendingProfile
	IncomeCategories  []CategoryAmount
	ExpenseCategories []CategoryAmount
}

// WeeklyTrend is one calendar week's activity grouped by category, for a
// single transaction type. Weeks without activity are absent.
type WeeklyTrend struct {
	WeekStarting time.Time
	WeekEnding   time.Time
	Categories   []CategoryAmount
}

// RecurringExpense is a detected repeating debit pattern.
type RecurringExpense struct {
	Description   string
	AmountRounded float64
	Count         int
	FirstDate     time.Time
	LastDate      time.Time
	AvgAmount     float64
	Frequency     string
}

// Beneficiary is an aggregated transfer counterparty.
type Beneficiary struct {
	SessionID        string
	Name             string
	TotalAmount      float64
	TransactionCount int
}

// Insight is one narrative observation produced by the insight generator.
type Insight struct {
	SessionID   string
	Title       string
	Description string
	Priority    string
	Type        string
	Action      *string
	IsLatest    bool
}

// SwotEntry is one line of the generated SWOT analysis.
type SwotEntry struct {
	SessionID string
	Analysis  string
	Type      string // strength, weakness, opportunity, threat
}

// SavingsPotential is one generated savings opportunity with its estimated
// monthly amount.
type SavingsPotential struct {
	SessionID string
	Potential string
	Amount    float64
}

// Assessment is the one-time overall summary set on the session when the
// pipeline reaches processed_analysis.
type Assessment struct {
	Title string
	Body  string
}
