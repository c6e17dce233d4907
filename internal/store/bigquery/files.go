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

func (s *Store) AddSessionFile(ctx context.Context, f *domain.SessionFile) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	row := &SessionFileRow{
		FileID:    f.ID,
		SessionID: f.SessionID,
		GCSURI:    f.URI,
		CreatedTS: f.CreatedAt,
	}
	if f.Password != nil {
		row.Password = bigquery.NullString{StringVal: *f.Password, Valid: true}
	}
	if f.BankID != nil {
		row.BankID = bigquery.NullString{StringVal: *f.BankID, Valid: true}
	}
	if err := s.inserter(sessionFilesTable).Put(ctx, row); err != nil {
		return fmt.Errorf("AddSessionFile: inserting row: %w", err)
	}
	return nil
}

func (s *Store) ListSessionFiles(ctx context.Context, sessionID string) ([]*domain.SessionFile, error) {
	q := s.client.Query(`
		SELECT
			file_id,
			session_id,
			gcs_uri,
			password,
			bank_id,
			created_ts
		FROM ` + s.tableRef(sessionFilesTable) + `
		WHERE session_id = @session_id
		ORDER BY created_ts, file_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "session_id", Value: sessionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListSessionFiles: query read: %w", err)
	}

	var files []*domain.SessionFile
	for {
		var row SessionFileRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListSessionFiles: iter next: %w", err)
		}
		files = append(files, row.toDomain())
	}
	return files, nil
}

// SetFilePassword records a discovered password. The NULL guard makes the
// first writer win; later calls are no-ops.
func (s *Store) SetFilePassword(ctx context.Context, fileID, password string) error {
	_, err := s.runDML(ctx, `
		UPDATE `+s.tableRef(sessionFilesTable)+`
		SET password = @password
		WHERE file_id = @file_id
		  AND password IS NULL
	`, []bigquery.QueryParameter{
		{Name: "password", Value: password},
		{Name: "file_id", Value: fileID},
	})
	if err != nil {
		return fmt.Errorf("SetFilePassword: %w", err)
	}
	return nil
}
