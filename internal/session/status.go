// Package session drives a session through the processing pipeline: an
// explicit state machine, one queued job per stage, and a retry reset that
// wipes derived data.
package session

import (
	"errors"
	"fmt"
)

// Status is one state of the session processing pipeline.
type Status string

const (
	StatusStarted                   Status = "started"
	StatusInitializingStatements    Status = "initializing_statements"
	StatusCategorizing              Status = "categorizing"
	StatusAnalyzingPayments         Status = "analyzing_payments"
	StatusAnalyzingTransactions     Status = "analyzing_transactions"
	StatusAnalyzingFinancialProfile Status = "analyzing_financial_profile"
	StatusAnalyzingInsights         Status = "analyzing_insights"
	StatusAnalyzingSwot             Status = "analyzing_swot"
	StatusAnalyzingSavingsPotential Status = "analyzing_savings_potential"
	StatusProcessedAnalysis         Status = "processed_analysis"
	StatusDone                      Status = "done"

	// StatusFailed is the terminal state entered when a stage exhausts its
	// retries. A failed session can only leave via the retry reset.
	StatusFailed Status = "failed"
)

// statusOrder is the forward progression of the pipeline.
var statusOrder = []Status{
	StatusStarted,
	StatusInitializingStatements,
	StatusCategorizing,
	StatusAnalyzingPayments,
	StatusAnalyzingTransactions,
	StatusAnalyzingFinancialProfile,
	StatusAnalyzingInsights,
	StatusAnalyzingSwot,
	StatusAnalyzingSavingsPotential,
	StatusProcessedAnalysis,
	StatusDone,
}

var statusIndex = func() map[Status]int {
	m := make(map[Status]int, len(statusOrder))
	for i, s := range statusOrder {
		m[s] = i
	}
	return m
}()

// ErrInvalidTransition reports a status change the state machine forbids.
var ErrInvalidTransition = errors.New("session: invalid status transition")

// Valid reports whether s is a known pipeline status.
func Valid(s Status) bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusIndex[s]
	return ok
}

// Next returns the status following s in the forward progression. The
// second return is false for done, failed and unknown statuses.
func Next(s Status) (Status, bool) {
	i, ok := statusIndex[s]
	if !ok || i == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[i+1], true
}

// CanTransition reports whether the state machine allows from -> to.
// Allowed moves are the forward progression, any state to failed (except
// the terminals), and the retry reset back to initializing_statements.
func CanTransition(from, to Status) bool {
	if !Valid(from) || !Valid(to) {
		return false
	}
	if to == StatusInitializingStatements {
		// Retry reset, allowed from any state; also the normal first
		// forward step from started.
		return true
	}
	if to == StatusFailed {
		return from != StatusDone && from != StatusFailed
	}
	next, ok := Next(from)
	return ok && next == to
}

// Transition validates from -> to and returns the new status.
func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
