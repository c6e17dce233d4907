package insight

import (
	"fmt"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/llm"
)

var insightPriorities = map[string]bool{"high": true, "medium": true, "low": true}
var swotTypes = map[string]bool{"strength": true, "weakness": true, "opportunity": true, "threat": true}

func parseInsights(sessionID string, items []map[string]interface{}) ([]*domain.Insight, error) {
	out := make([]*domain.Insight, 0, len(items))
	for i, item := range items {
		title, err := llm.StringField(item, "title")
		if err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
		description, err := llm.StringField(item, "description")
		if err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
		priority, err := llm.StringField(item, "priority")
		if err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
		if !insightPriorities[priority] {
			priority = "medium"
		}
		kind, err := llm.StringField(item, "type")
		if err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
		action, err := llm.OptionalStringField(item, "action")
		if err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
		out = append(out, &domain.Insight{
			SessionID:   sessionID,
			Title:       title,
			Description: description,
			Priority:    priority,
			Type:        kind,
			Action:      action,
		})
	}
	return out, nil
}

func parseSwot(sessionID string, items []map[string]interface{}) ([]*domain.SwotEntry, error) {
	out := make([]*domain.SwotEntry, 0, len(items))
	for i, item := range items {
		analysis, err := llm.StringField(item, "analysis")
		if err != nil {
			return nil, fmt.Errorf("swot entry %d: %w", i, err)
		}
		kind, err := llm.StringField(item, "type")
		if err != nil {
			return nil, fmt.Errorf("swot entry %d: %w", i, err)
		}
		if !swotTypes[kind] {
			return nil, fmt.Errorf("swot entry %d: unknown type %q", i, kind)
		}
		out = append(out, &domain.SwotEntry{
			SessionID: sessionID,
			Analysis:  analysis,
			Type:      kind,
		})
	}
	return out, nil
}

func parseSavingsPotentials(sessionID string, items []map[string]interface{}) ([]*domain.SavingsPotential, error) {
	out := make([]*domain.SavingsPotential, 0, len(items))
	for i, item := range items {
		potential, err := llm.StringField(item, "potential")
		if err != nil {
			return nil, fmt.Errorf("savings potential %d: %w", i, err)
		}
		amount, err := llm.OptionalFloatField(item, "amount")
		if err != nil {
			return nil, fmt.Errorf("savings potential %d: %w", i, err)
		}
		row := &domain.SavingsPotential{SessionID: sessionID, Potential: potential}
		if amount != nil {
			row.Amount = *amount
		}
		out = append(out, row)
	}
	return out, nil
}

func parseAssessment(obj map[string]interface{}) (domain.Assessment, error) {
	title, err := llm.StringField(obj, "title")
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("assessment: %w", err)
	}
	body, err := llm.StringField(obj, "body")
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("assessment: %w", err)
	}
	return domain.Assessment{Title: title, Body: body}, nil
}
