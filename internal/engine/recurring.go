package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// minRecurringCount is the number of sightings before a debit pattern
// counts as recurring.
const minRecurringCount = 3

// RecurringExpenses detects repeating debit patterns by grouping on
// (description, amount rounded to hundreds) and tagging each group with a
// frequency derived from the average gap between sightings. Results are
// ordered by sighting count descending.
func RecurringExpenses(txs []*domain.SessionTransaction) []domain.RecurringExpense {
	type key struct {
		description string
		rounded     float64
	}
	groups := make(map[key][]*domain.SessionTransaction)
	for _, t := range txs {
		if !t.IsDebit() {
			continue
		}
		description := strings.TrimSpace(t.Description)
		if description == "" {
			description = "Unknown"
		}
		k := key{description: description, rounded: math.Round(t.Amount/100) * 100}
		groups[k] = append(groups[k], t)
	}

	var out []domain.RecurringExpense
	for k, members := range groups {
		if len(members) < minRecurringCount {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Date.Before(members[j].Date) })

		var sum float64
		for _, m := range members {
			sum += m.Amount
		}
		out = append(out, domain.RecurringExpense{
			Description:   k.description,
			AmountRounded: k.rounded,
			Count:         len(members),
			FirstDate:     members[0].Date,
			LastDate:      members[len(members)-1].Date,
			AvgAmount:     sum / float64(len(members)),
			Frequency:     detectFrequency(members),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Description < out[j].Description
	})
	return out
}

func detectFrequency(members []*domain.SessionTransaction) string {
	if len(members) < 2 {
		return "unknown"
	}
	var totalGap float64
	for i := 1; i < len(members); i++ {
		totalGap += members[i].Date.Sub(members[i-1].Date).Hours() / 24
	}
	avgGap := totalGap / float64(len(members)-1)
	switch {
	case avgGap <= 2:
		return "daily"
	case avgGap <= 10:
		return "weekly"
	case avgGap <= 40:
		return "monthly"
	case avgGap <= 100:
		return "quarterly"
	default:
		return "irregular"
	}
}
