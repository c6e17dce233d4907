package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/llm"
)

// PageExtractor turns one page of cleaned statement text into a structured
// partial statement.
type PageExtractor interface {
	ExtractPage(ctx context.Context, pageText string, pageIndex int) (domain.PartialStatement, error)
}

// GeminiExtractor implements PageExtractor against the Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiExtractor(client *genai.Client, model string) *GeminiExtractor {
	return &GeminiExtractor{client: client, model: model}
}

func (g *GeminiExtractor) ExtractPage(ctx context.Context, pageText string, pageIndex int) (domain.PartialStatement, error) {
	prompt := pageExtractionPrompt + "\n\nStatement page text:\n" + pageText

	raw, err := llm.GenerateText(ctx, g.client, g.model, prompt)
	if err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: %w", pageIndex, err)
	}

	clean := llm.CleanModelJSON(raw)
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: unmarshal model JSON: %w\nraw response: %s", pageIndex, err, raw)
	}

	return partialStatementFromModel(obj, pageIndex)
}

// partialStatementFromModel converts decoded model output into a
// PartialStatement. Header fields and per-row fields stay nil when the model
// reports null; rows missing required fields are filtered later, at the
// persistence boundary.
func partialStatementFromModel(obj map[string]interface{}, pageIndex int) (domain.PartialStatement, error) {
	ps := domain.PartialStatement{PageIndex: pageIndex}

	var err error
	if ps.AccountName, err = llm.OptionalStringField(obj, "account_name"); err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: %w", pageIndex, err)
	}
	if ps.AccountNumber, err = llm.OptionalStringField(obj, "account_number"); err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: %w", pageIndex, err)
	}
	if ps.Currency, err = llm.OptionalStringField(obj, "currency"); err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: %w", pageIndex, err)
	}
	if ps.OpeningBalance, err = llm.OptionalFloatField(obj, "opening_balance"); err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: %w", pageIndex, err)
	}
	if ps.ClosingBalance, err = llm.OptionalFloatField(obj, "closing_balance"); err != nil {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: %w", pageIndex, err)
	}

	txAny, ok := obj["transactions"]
	if !ok || txAny == nil {
		return ps, nil
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return domain.PartialStatement{}, fmt.Errorf("extract: page %d: 'transactions' is %T, want array", pageIndex, txAny)
	}

	ps.Transactions = make([]domain.StatementTransaction, 0, len(txSlice))
	for i, item := range txSlice {
		row, ok := item.(map[string]interface{})
		if !ok {
			return domain.PartialStatement{}, fmt.Errorf("extract: page %d: transaction %d is %T, want object", pageIndex, i, item)
		}
		tx, err := statementTransactionFromModel(row)
		if err != nil {
			return domain.PartialStatement{}, fmt.Errorf("extract: page %d: transaction %d: %w", pageIndex, i, err)
		}
		ps.Transactions = append(ps.Transactions, tx)
	}
	return ps, nil
}

func statementTransactionFromModel(row map[string]interface{}) (domain.StatementTransaction, error) {
	var tx domain.StatementTransaction

	dateStr, err := llm.OptionalStringField(row, "date")
	if err != nil {
		return tx, err
	}
	if dateStr != nil {
		// A date the model could not format is as good as no date; the row
		// gets dropped by the completeness filter instead of failing the page.
		if date, err := domain.ParseStatementDate(*dateStr); err == nil {
			tx.Date = &date
		}
	}

	if tx.Reference, err = llm.OptionalStringField(row, "reference"); err != nil {
		return tx, err
	}
	if tx.Description, err = llm.OptionalStringField(row, "description"); err != nil {
		return tx, err
	}
	if tx.Type, err = llm.OptionalStringField(row, "type"); err != nil {
		return tx, err
	}
	if tx.Amount, err = llm.OptionalFloatField(row, "amount"); err != nil {
		return tx, err
	}
	if tx.BalanceAfter, err = llm.OptionalFloatField(row, "balance_after"); err != nil {
		return tx, err
	}
	return tx, nil
}
