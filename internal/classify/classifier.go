// Package classify assigns categories to uncategorized transactions via an
// external classification collaborator.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/llm"
)

// Classifier picks the best-fitting category for a single transaction.
// Returning an empty id means the collaborator could not decide; the
// transaction stays uncategorized for the next pass.
type Classifier interface {
	Classify(ctx context.Context, tx *domain.SessionTransaction, categories []*domain.Category) (string, error)
}

// GeminiClassifier implements Classifier against the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

func NewGeminiClassifier(client *genai.Client, model string) *GeminiClassifier {
	return &GeminiClassifier{client: client, model: model}
}

func (g *GeminiClassifier) Classify(ctx context.Context, tx *domain.SessionTransaction, categories []*domain.Category) (string, error) {
	prompt := classificationPrompt(tx, categories)

	raw, err := llm.GenerateText(ctx, g.client, g.model, prompt)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	clean := llm.CleanModelJSON(raw)
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return "", fmt.Errorf("classify: unmarshal model JSON: %w\nraw response: %s", err, raw)
	}

	id, err := llm.OptionalStringField(obj, "category_id")
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if id == nil {
		return "", nil
	}

	// The model must pick from the supplied taxonomy; anything else is a
	// hallucinated id.
	for _, c := range categories {
		if c.ID == *id {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("classify: model returned unknown category id %q", *id)
}

func classificationPrompt(tx *domain.SessionTransaction, categories []*domain.Category) string {
	var b strings.Builder
	b.WriteString("You are a transaction classifier for personal and business bank statements.\n\n")
	b.WriteString("Pick the single best category for the transaction below.\n\n")
	b.WriteString("Categories (id: name — description):\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s: %s", c.ID, c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, " — %s", c.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTransaction:\n- description: %q\n- type: %s\n- amount: %.2f %s\n- date: %s\n",
		tx.Description, tx.TransactionType, tx.Amount, tx.Currency, tx.Date.Format("2006-01-02"))
	b.WriteString("\nReturn ONLY valid raw JSON, no code fences, of the form:\n")
	b.WriteString("{\"category_id\": \"<one id from the list, or null if none fits>\"}\n")
	return b.String()
}
