package domain

import (
	"strings"
	"time"
)

// Session is one bounded analysis request, identified by an opaque token.
// Value type only; the orchestration layer owns the persisted row.
type Session struct {
	ID           string
	Identifier   string
	Name         string
	Email        string
	CustomerType string
	Status       string
	Indexed      bool

	// Set once by the narrative generator at the end of the pipeline.
	OverallAssessment      string
	OverallAssessmentTitle string

	CreatedAt time.Time
}

// SessionFile is one uploaded statement file belonging to a session.
// Password caches the result of the first successful unlock so future
// opens skip the search.
type SessionFile struct {
	ID        string
	SessionID string
	URI       string
	Password  *string
	BankID    *string
	CreatedAt time.Time
}

// SessionAccount is one bank account discovered in a session, either from a
// parsed statement or a linked feed. CurrentBalance is the statement's
// closing balance, never recomputed from transactions.
type SessionAccount struct {
	ID             string
	SessionID      string
	AccountName    string
	AccountNumber  string
	Currency       string
	CurrentBalance float64
	BankID         string
	CreatedAt      time.Time
}

// SessionTransaction belongs to exactly one SessionAccount. Amount is
// always a non-negative magnitude; TransactionType carries the direction.
type SessionTransaction struct {
	ID              string
	AccountID       string
	CategoryID      *string
	Currency        string
	Date            time.Time
	Amount          float64
	BalanceAfter    *float64
	TransactionType string
	Description     string
	CreatedAt       time.Time
}

// Category is read-only reference data shared across sessions.
type Category struct {
	ID          string
	Name        string
	Icon        string
	Description string
}

// Transaction direction tags. Stored values may carry arbitrary case and
// whitespace; compare through IsCredit/IsDebit.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// IsCredit reports whether the transaction is an inflow.
func (t SessionTransaction) IsCredit() bool {
	return normalizeType(t.TransactionType) == TypeCredit
}

// IsDebit reports whether the transaction is an outflow.
func (t SessionTransaction) IsDebit() bool {
	return normalizeType(t.TransactionType) == TypeDebit
}
