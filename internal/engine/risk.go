// Package engine computes the numeric side of a session's financial
// profile: risk indicators, spending ratios, weekly trends and recurring
// expense detection. Every computation is a pure function of the
// transaction set handed in; degenerate input (no transactions, no income,
// zero date span) degrades to zero instead of failing.
package engine

import (
	"math"
	"time"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// volatilityCompression caps the coefficient of variation that maps to a
// scaled volatility of 1. Raw CV is unbounded and must not dominate the
// composite scores downstream.
const volatilityCompression = 10.0

// Risk computes the four risk indicators over a session's transactions,
// ordered by date ascending, plus the summed closing balance of its
// accounts.
func Risk(txs []*domain.SessionTransaction, closingBalance float64) domain.Risk {
	if len(txs) == 0 {
		return domain.Risk{}
	}
	return domain.Risk{
		Liquidity:     LiquidityRisk(txs, closingBalance),
		Concentration: ConcentrationRisk(txs),
		Expense:       ExpenseRisk(txs),
		Volatility:    VolatilityRisk(txs),
	}
}

// LiquidityRisk is the closing balance divided by the average daily
// outflow. Higher means more buffer relative to the spending rate.
func LiquidityRisk(txs []*domain.SessionTransaction, closingBalance float64) float64 {
	if len(txs) == 0 {
		return 0
	}
	var totalDebit float64
	for _, t := range txs {
		if t.IsDebit() {
			totalDebit += t.Amount
		}
	}
	if totalDebit <= 0 {
		return 0
	}
	days := daySpan(txs)
	if days < 1 {
		days = 1
	}
	avgDailyOutflow := totalDebit / float64(days)
	return closingBalance / avgDailyOutflow
}

// ConcentrationRisk is the share of total income contributed by the single
// largest income category. Zero total income yields 0.
func ConcentrationRisk(txs []*domain.SessionTransaction) float64 {
	byCategory := make(map[string]float64)
	var total, largest float64
	for _, t := range txs {
		if !t.IsCredit() || t.CategoryID == nil {
			continue
		}
		byCategory[*t.CategoryID] += t.Amount
		total += t.Amount
	}
	for _, amount := range byCategory {
		if amount > largest {
			largest = amount
		}
	}
	if total <= 0 {
		return 0
	}
	return largest / total
}

// ExpenseRisk measures week-over-week debit growth, weighting later weeks
// more heavily. The date range is partitioned into consecutive 7-day
// buckets starting at the first transaction's date; fewer than one full
// week of data yields 0.
func ExpenseRisk(txs []*domain.SessionTransaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	weeks := daySpan(txs) / 7
	if weeks <= 0 {
		return 0
	}

	start := txs[0].Date
	totals := make([]float64, weeks)
	for _, t := range txs {
		if !t.IsDebit() {
			continue
		}
		i := int(t.Date.Sub(start).Hours() / 24 / 7)
		if i >= 0 && i < weeks {
			totals[i] += t.Amount
		}
	}

	// Week i carries weight 10*(i-1); normalized so the weights sum to 1.
	var weightSum float64
	for i := 1; i <= weeks; i++ {
		weightSum += float64(10 * (i - 1))
	}

	var risk float64
	for i := 2; i <= weeks; i++ {
		growth := weeklyGrowth(totals[i-2], totals[i-1])
		if weightSum > 0 {
			risk += growth * (float64(10*(i-1)) / weightSum)
		}
	}
	return risk / float64(weeks)
}

// weeklyGrowth is the percentage growth of debit totals between two
// consecutive weeks, rounded to 2 decimals.
func weeklyGrowth(previous, current float64) float64 {
	switch {
	case previous == 0 && current == 0:
		return 0
	case previous == 0:
		return 100
	case current == 0:
		return 0
	default:
		return math.Round(((current-previous)/previous)*100*100) / 100
	}
}

// VolatilityRisk is the coefficient of variation of debit amounts,
// log-compressed to [0,1].
func VolatilityRisk(txs []*domain.SessionTransaction) float64 {
	var amounts []float64
	for _, t := range txs {
		if t.IsDebit() {
			amounts = append(amounts, t.Amount)
		}
	}
	if len(amounts) < 1 {
		return 0
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))
	if mean == 0 {
		return 0
	}

	var sq float64
	for _, a := range amounts {
		d := a - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(amounts))) / mean

	scaled := math.Log(1+cv) / math.Log(1+volatilityCompression)
	return math.Min(1, scaled)
}

// daySpan is the number of whole days between the first and last
// transaction. Transactions are expected in date-ascending order.
func daySpan(txs []*domain.SessionTransaction) int {
	if len(txs) == 0 {
		return 0
	}
	first := txs[0].Date
	last := txs[len(txs)-1].Date
	return int(last.Sub(first) / (24 * time.Hour))
}
