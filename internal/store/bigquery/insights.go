package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// ReplaceInsights flags every previous insight of the session as not latest
// and inserts the new batch as the latest generation.
func (s *Store) ReplaceInsights(ctx context.Context, sessionID string, insights []*domain.Insight) error {
	if _, err := s.runDML(ctx, `
		UPDATE `+s.tableRef(insightsTable)+`
		SET is_latest = FALSE
		WHERE session_id = @session_id
		  AND is_latest = TRUE
	`, []bigquery.QueryParameter{
		{Name: "session_id", Value: sessionID},
	}); err != nil {
		return fmt.Errorf("ReplaceInsights: flag previous: %w", err)
	}

	if len(insights) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]*InsightRow, 0, len(insights))
	for _, in := range insights {
		row := &InsightRow{
			InsightID:   uuid.NewString(),
			SessionID:   sessionID,
			Title:       in.Title,
			Description: in.Description,
			Priority:    in.Priority,
			Type:        in.Type,
			IsLatest:    true,
			CreatedTS:   now,
		}
		if in.Action != nil {
			row.Action = bigquery.NullString{StringVal: *in.Action, Valid: true}
		}
		rows = append(rows, row)
	}
	if err := s.inserter(insightsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("ReplaceInsights: inserting rows: %w", err)
	}
	return nil
}

func (s *Store) InsertSwotEntries(ctx context.Context, entries []*domain.SwotEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*SwotRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &SwotRow{
			SwotID:    uuid.NewString(),
			SessionID: e.SessionID,
			Analysis:  e.Analysis,
			Type:      e.Type,
			CreatedTS: now,
		})
	}
	if err := s.inserter(swotsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertSwotEntries: inserting rows: %w", err)
	}
	return nil
}

func (s *Store) InsertSavingsPotentials(ctx context.Context, potentials []*domain.SavingsPotential) error {
	if len(potentials) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*SavingsPotentialRow, 0, len(potentials))
	for _, p := range potentials {
		rows = append(rows, &SavingsPotentialRow{
			PotentialID: uuid.NewString(),
			SessionID:   p.SessionID,
			Potential:   p.Potential,
			Amount:      p.Amount,
			CreatedTS:   now,
		})
	}
	if err := s.inserter(savingsPotentialsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertSavingsPotentials: inserting rows: %w", err)
	}
	return nil
}

func (s *Store) InsertBeneficiaries(ctx context.Context, beneficiaries []*domain.Beneficiary) error {
	if len(beneficiaries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*BeneficiaryRow, 0, len(beneficiaries))
	for _, b := range beneficiaries {
		rows = append(rows, &BeneficiaryRow{
			BeneficiaryID:    uuid.NewString(),
			SessionID:        b.SessionID,
			Name:             b.Name,
			TotalAmount:      b.TotalAmount,
			TransactionCount: b.TransactionCount,
			CreatedTS:        now,
		})
	}
	if err := s.inserter(beneficiariesTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertBeneficiaries: inserting rows: %w", err)
	}
	return nil
}
