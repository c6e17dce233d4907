package insight

import (
	"encoding/json"
	"testing"

	"github.com/kayuse/usekudibackend/internal/domain"
)

func decodeItems(t *testing.T, raw string) []map[string]interface{} {
	t.Helper()
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatal(err)
	}
	return items
}

func TestParseInsights(t *testing.T) {
	items := decodeItems(t, `[
		{"title": "High spending ratio", "description": "Outflow is close to income.", "priority": "high", "type": "spending", "action": "Set a weekly budget"},
		{"title": "No savings", "description": "Nothing went to savings.", "priority": "urgent", "type": "savings", "action": null}
	]`)

	got, err := parseInsights("sess-1", items)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d insights, want 2", len(got))
	}
	if got[0].SessionID != "sess-1" || got[0].Priority != "high" || got[0].Action == nil {
		t.Errorf("first insight = %+v", got[0])
	}
	// Unknown priorities degrade to medium instead of failing the batch.
	if got[1].Priority != "medium" {
		t.Errorf("unknown priority mapped to %q, want medium", got[1].Priority)
	}
	if got[1].Action != nil {
		t.Errorf("null action parsed as %v, want nil", got[1].Action)
	}
}

func TestParseInsights_MissingTitle(t *testing.T) {
	items := decodeItems(t, `[{"description": "x", "priority": "low", "type": "risk"}]`)
	if _, err := parseInsights("s", items); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestParseSwot(t *testing.T) {
	items := decodeItems(t, `[
		{"analysis": "Stable weekly income", "type": "strength"},
		{"analysis": "Single income source", "type": "threat"}
	]`)
	got, err := parseSwot("sess-1", items)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Type != "strength" || got[1].Type != "threat" {
		t.Errorf("parseSwot = %+v", got)
	}
}

func TestParseSwot_UnknownQuadrant(t *testing.T) {
	items := decodeItems(t, `[{"analysis": "x", "type": "observation"}]`)
	if _, err := parseSwot("s", items); err == nil {
		t.Fatal("expected error for unknown SWOT type")
	}
}

func TestParseSavingsPotentials(t *testing.T) {
	items := decodeItems(t, `[
		{"potential": "Cancel unused subscription", "amount": 4500},
		{"potential": "Review transfers", "amount": null}
	]`)
	got, err := parseSavingsPotentials("sess-1", items)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Amount != 4500 {
		t.Errorf("amount = %v, want 4500", got[0].Amount)
	}
	if got[1].Amount != 0 {
		t.Errorf("null amount = %v, want 0", got[1].Amount)
	}
}

func TestParseAssessment(t *testing.T) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(`{"title": "Healthy", "body": "Finances look stable."}`), &obj); err != nil {
		t.Fatal(err)
	}
	got, err := parseAssessment(obj)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Assessment{Title: "Healthy", Body: "Finances look stable."}
	if got != want {
		t.Errorf("parseAssessment = %+v, want %+v", got, want)
	}
}

func TestAnalysisContextIsValidJSON(t *testing.T) {
	in := AnalysisInput{
		SessionID:    "sess-1",
		CustomerType: "individual",
		Profile: domain.FinancialProfile{
			IncomeFlow: domain.IncomeFlow{Inflow: 1000, Outflow: 500, NetIncome: 500, ClosingBalance: 500},
		},
	}
	s, err := analysisContext(in)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("analysis context is not valid JSON: %v", err)
	}
	if _, ok := decoded["income_flow"]; !ok {
		t.Error("income_flow missing from analysis context")
	}
}
