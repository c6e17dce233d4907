package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// uncategorizedLabel names the bucket for transactions the classifier has
// not reached yet.
const uncategorizedLabel = "Uncategorized"

// WeeklyTrends buckets the given transaction type into calendar weeks
// (Monday start) grouped by category. Weeks without activity are absent;
// the result is ordered by week start ascending.
func WeeklyTrends(txs []*domain.SessionTransaction, names map[string]string, txType string) []domain.WeeklyTrend {
	type key struct {
		week     time.Time
		category string
	}
	totals := make(map[key]decimal.Decimal)
	for _, t := range txs {
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
		categoryID := ""
		if t.CategoryID != nil {
			categoryID = *t.CategoryID
		}
		k := key{week: weekStart(t.Date), category: categoryID}
		totals[k] = totals[k].Add(decimal.NewFromFloat(t.Amount))
	}

	byWeek := make(map[time.Time][]domain.CategoryAmount)
	for k, total := range totals {
		name := names[k.category]
		if k.category == "" {
			name = uncategorizedLabel
		}
		amount, _ := total.Float64()
		byWeek[k.week] = append(byWeek[k.week], domain.CategoryAmount{
			CategoryID:   k.category,
			CategoryName: name,
			Amount:       amount,
		})
	}

	weeks := make([]time.Time, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	out := make([]domain.WeeklyTrend, 0, len(weeks))
	for _, w := range weeks {
		categories := byWeek[w]
		sort.Slice(categories, func(i, j int) bool {
			if categories[i].Amount != categories[j].Amount {
				return categories[i].Amount > categories[j].Amount
			}
			return categories[i].CategoryID < categories[j].CategoryID
		})
		out = append(out, domain.WeeklyTrend{
			WeekStarting: w,
			WeekEnding:   w.AddDate(0, 0, 6),
			Categories:   categories,
		})
	}
	return out
}

// weekStart truncates a date to the Monday of its calendar week, at
// midnight UTC.
func weekStart(d time.Time) time.Time {
	d = d.UTC()
	offset := (int(d.Weekday()) + 6) % 7
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
