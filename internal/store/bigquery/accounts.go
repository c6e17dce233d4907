package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/kayuse/usekudibackend/internal/domain"
)

func (s *Store) CreateAccount(ctx context.Context, a *domain.SessionAccount) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	row := &AccountRow{
		AccountID:      a.ID,
		SessionID:      a.SessionID,
		AccountName:    a.AccountName,
		AccountNumber:  a.AccountNumber,
		Currency:       a.Currency,
		CurrentBalance: a.CurrentBalance,
		BankID:         a.BankID,
		CreatedTS:      a.CreatedAt,
	}
	if err := s.inserter(accountsTable).Put(ctx, row); err != nil {
		return fmt.Errorf("CreateAccount: inserting row: %w", err)
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, sessionID string) ([]*domain.SessionAccount, error) {
	q := s.client.Query(`
		SELECT
			account_id,
			session_id,
			account_name,
			account_number,
			currency,
			current_balance,
			bank_id,
			created_ts
		FROM ` + s.tableRef(accountsTable) + `
		WHERE session_id = @session_id
		ORDER BY created_ts, account_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "session_id", Value: sessionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: query read: %w", err)
	}

	var accounts []*domain.SessionAccount
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: iter next: %w", err)
		}
		accounts = append(accounts, row.toDomain())
	}
	return accounts, nil
}

func (s *Store) InsertTransactions(ctx context.Context, rows []*domain.SessionTransaction) error {
	if len(rows) == 0 {
		return nil
	}

	bqRows := make([]*TransactionRow, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		bqRows = append(bqRows, transactionRow(r))
	}
	if err := s.inserter(transactionsTable).Put(ctx, bqRows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

const transactionColumns = `
	t.transaction_id,
	t.account_id,
	t.category_id,
	t.currency,
	t.transaction_date,
	t.amount,
	t.balance_after,
	t.transaction_type,
	t.description,
	t.created_ts`

func (s *Store) listTransactions(ctx context.Context, sessionID string, onlyUncategorized bool) ([]*domain.SessionTransaction, error) {
	filter := ""
	if onlyUncategorized {
		filter = "AND t.category_id IS NULL"
	}
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s t
		INNER JOIN %s a
		  ON t.account_id = a.account_id
		WHERE a.session_id = @session_id
		  %s
		ORDER BY t.transaction_date, t.created_ts
	`, transactionColumns, s.tableRef(transactionsTable), s.tableRef(accountsTable), filter))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "session_id", Value: sessionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("listTransactions: query read: %w", err)
	}

	var txs []*domain.SessionTransaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listTransactions: iter next: %w", err)
		}
		txs = append(txs, row.toDomain())
	}
	return txs, nil
}

func (s *Store) ListTransactions(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, error) {
	return s.listTransactions(ctx, sessionID, false)
}

func (s *Store) ListUncategorized(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, error) {
	return s.listTransactions(ctx, sessionID, true)
}

// AssignCategory sets the category only when none is recorded yet. The NULL
// guard keeps categorization idempotent under concurrent passes.
func (s *Store) AssignCategory(ctx context.Context, transactionID, categoryID string) (bool, error) {
	affected, err := s.runDML(ctx, `
		UPDATE `+s.tableRef(transactionsTable)+`
		SET category_id = @category_id
		WHERE transaction_id = @transaction_id
		  AND category_id IS NULL
	`, []bigquery.QueryParameter{
		{Name: "category_id", Value: categoryID},
		{Name: "transaction_id", Value: transactionID},
	})
	if err != nil {
		return false, fmt.Errorf("AssignCategory: %w", err)
	}
	return affected > 0, nil
}
