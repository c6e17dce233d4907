package domain

import "time"

// StatementTransaction is one transaction line as extracted from a page,
// prior to persistence. Optional fields are nil when the extractor could
// not determine them; rows missing any required field are dropped before
// insert.
type StatementTransaction struct {
	Date         *time.Time
	Reference    *string
	Description  *string
	Type         *string
	Amount       *float64
	BalanceAfter *float64
}

// Complete reports whether the line carries every field required for
// persistence (date, description, type, amount).
func (t StatementTransaction) Complete() bool {
	return t.Date != nil && t.Description != nil && t.Type != nil && t.Amount != nil
}

// PartialStatement is the extraction result of a single page. Header fields
// are nil when the page does not show them (continuation pages usually
// carry transactions only).
type PartialStatement struct {
	PageIndex      int
	AccountName    *string
	AccountNumber  *string
	Currency       *string
	OpeningBalance *float64
	ClosingBalance *float64
	Transactions   []StatementTransaction
}

// ParseStatementDate parses the ISO format (YYYY-MM-DD) the extraction
// collaborator is contracted to return.
func ParseStatementDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// Statement is the merged, page-ordered representation of one bank account
// extracted from a whole document.
type Statement struct {
	AccountName    string
	AccountNumber  string
	Currency       string
	OpeningBalance *float64
	ClosingBalance *float64
	Transactions   []StatementTransaction
}
