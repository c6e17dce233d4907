// Package bigquery implements the persistence interfaces on BigQuery.
// Tables live in one dataset; writes go through streaming inserters and
// parameterized DML.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/kayuse/usekudibackend/internal/store"
)

// Ensure Store implements the full persistence surface.
var _ store.Store = (*Store)(nil)

const (
	sessionsTable          = "sessions"
	sessionFilesTable      = "session_files"
	accountsTable          = "session_accounts"
	transactionsTable      = "session_transactions"
	categoriesTable        = "categories"
	insightsTable          = "insights"
	swotsTable             = "swots"
	savingsPotentialsTable = "savings_potentials"
	beneficiariesTable     = "beneficiaries"

	dateFormat = "2006-01-02"
)

// Store implements store.Store on BigQuery.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewStore creates a Store with its own BigQuery client.
func NewStore(ctx context.Context, projectID, datasetID string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery: create client: %w", err)
	}
	return NewStoreWithClient(client, projectID, datasetID), nil
}

// NewStoreWithClient creates a Store using the provided BigQuery client.
func NewStoreWithClient(client *bigquery.Client, projectID, datasetID string) *Store {
	return &Store{client: client, projectID: projectID, datasetID: datasetID}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// tableRef returns the fully qualified, backtick-quoted table name for use
// inside query text.
func (s *Store) tableRef(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", s.projectID, s.datasetID, table)
}

func (s *Store) inserter(table string) *bigquery.Inserter {
	return s.client.DatasetInProject(s.projectID, s.datasetID).Table(table).Inserter()
}

// runDML executes a DML statement and returns the number of affected rows.
func (s *Store) runDML(ctx context.Context, query string, params []bigquery.QueryParameter) (int64, error) {
	q := s.client.Query(query)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}
