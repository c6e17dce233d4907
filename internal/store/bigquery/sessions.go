package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/store"
)

func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	if sess.Identifier == "" {
		return fmt.Errorf("CreateSession: session identifier is required")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	row := &SessionRow{
		SessionID:        sess.ID,
		Identifier:       sess.Identifier,
		Name:             sess.Name,
		Email:            sess.Email,
		CustomerType:     sess.CustomerType,
		ProcessingStatus: sess.Status,
		Indexed:          sess.Indexed,
		CreatedTS:        sess.CreatedAt,
	}
	if err := s.inserter(sessionsTable).Put(ctx, row); err != nil {
		return fmt.Errorf("CreateSession: inserting row: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, identifier string) (*domain.Session, error) {
	q := s.client.Query(`
		SELECT
			session_id,
			identifier,
			name,
			email,
			customer_type,
			processing_status,
			indexed,
			overall_assessment,
			overall_assessment_title,
			created_ts
		FROM ` + s.tableRef(sessionsTable) + `
		WHERE identifier = @identifier
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "identifier", Value: identifier},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetSession: query read: %w", err)
	}

	var row SessionRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, fmt.Errorf("session %s: %w", identifier, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetSession: iter next: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, identifier, status string) error {
	affected, err := s.runDML(ctx, `
		UPDATE `+s.tableRef(sessionsTable)+`
		SET processing_status = @status
		WHERE identifier = @identifier
	`, []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "identifier", Value: identifier},
	})
	if err != nil {
		return fmt.Errorf("UpdateSessionStatus: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", identifier, store.ErrNotFound)
	}
	return nil
}

func (s *Store) SetOverallAssessment(ctx context.Context, identifier string, a domain.Assessment) error {
	affected, err := s.runDML(ctx, `
		UPDATE `+s.tableRef(sessionsTable)+`
		SET overall_assessment = @body,
		    overall_assessment_title = @title
		WHERE identifier = @identifier
	`, []bigquery.QueryParameter{
		{Name: "body", Value: a.Body},
		{Name: "title", Value: a.Title},
		{Name: "identifier", Value: identifier},
	})
	if err != nil {
		return fmt.Errorf("SetOverallAssessment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", identifier, store.ErrNotFound)
	}
	return nil
}
