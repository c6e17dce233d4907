package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// DeleteDerivedData removes everything a pipeline retry will regenerate:
// savings potentials, SWOT rows, insights, beneficiaries, transactions and
// accounts. The session row and its files (with any cached passwords)
// survive. Deletion order keeps the transactions-to-accounts reference
// intact until the end.
func (s *Store) DeleteDerivedData(ctx context.Context, sessionID string) error {
	params := []bigquery.QueryParameter{
		{Name: "session_id", Value: sessionID},
	}

	for _, table := range []string{savingsPotentialsTable, swotsTable, insightsTable, beneficiariesTable} {
		if _, err := s.runDML(ctx, `
			DELETE FROM `+s.tableRef(table)+`
			WHERE session_id = @session_id
		`, params); err != nil {
			return fmt.Errorf("DeleteDerivedData: deleting %s: %w", table, err)
		}
	}

	if _, err := s.runDML(ctx, `
		DELETE FROM `+s.tableRef(transactionsTable)+`
		WHERE account_id IN (
			SELECT account_id
			FROM `+s.tableRef(accountsTable)+`
			WHERE session_id = @session_id
		)
	`, params); err != nil {
		return fmt.Errorf("DeleteDerivedData: deleting transactions: %w", err)
	}

	if _, err := s.runDML(ctx, `
		DELETE FROM `+s.tableRef(accountsTable)+`
		WHERE session_id = @session_id
	`, params); err != nil {
		return fmt.Errorf("DeleteDerivedData: deleting accounts: %w", err)
	}

	return nil
}
