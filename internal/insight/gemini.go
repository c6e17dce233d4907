package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/llm"
)

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

const insightsPrompt = "You are a financial analyst reviewing the analysis summary below.\n\n" +
	"Produce 3 to 6 actionable insights about this customer's finances.\n\n" +
	"Return ONLY valid raw JSON, no code fences: an array of objects with fields:\n" +
	"- \"title\": string (short headline)\n" +
	"- \"description\": string (2-3 sentences)\n" +
	"- \"priority\": \"high\", \"medium\" or \"low\"\n" +
	"- \"type\": \"spending\", \"income\", \"savings\" or \"risk\"\n" +
	"- \"action\": string or null (one concrete next step)\n"

const swotPrompt = "You are a financial analyst reviewing the analysis summary below.\n\n" +
	"Produce a SWOT analysis of this customer's finances: at least one entry\n" +
	"per quadrant.\n\n" +
	"Return ONLY valid raw JSON, no code fences: an array of objects with fields:\n" +
	"- \"analysis\": string (one observation)\n" +
	"- \"type\": \"strength\", \"weakness\", \"opportunity\" or \"threat\"\n"

const savingsPrompt = "You are a financial analyst reviewing the analysis summary below.\n\n" +
	"Identify concrete savings opportunities, using the recurring expenses and\n" +
	"spending categories. Estimate a realistic monthly amount for each.\n\n" +
	"Return ONLY valid raw JSON, no code fences: an array of objects with fields:\n" +
	"- \"potential\": string (what to change and why)\n" +
	"- \"amount\": number (estimated monthly saving, plain decimal)\n"

const assessmentPrompt = "You are a financial analyst reviewing the analysis summary below.\n\n" +
	"Write an overall assessment of this customer's financial health.\n\n" +
	"Return ONLY valid raw JSON, no code fences: an object with fields:\n" +
	"- \"title\": string (one line)\n" +
	"- \"body\": string (one or two paragraphs)\n"

func (g *GeminiGenerator) generate(ctx context.Context, prompt string, in AnalysisInput) (string, error) {
	contextBlock, err := analysisContext(in)
	if err != nil {
		return "", err
	}
	raw, err := llm.GenerateText(ctx, g.client, g.model, prompt+"\nAnalysis summary:\n"+contextBlock)
	if err != nil {
		return "", fmt.Errorf("insight: %w", err)
	}
	return llm.CleanModelJSON(raw), nil
}

func (g *GeminiGenerator) Insights(ctx context.Context, in AnalysisInput) ([]*domain.Insight, error) {
	clean, err := g.generate(ctx, insightsPrompt, in)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("insight: unmarshal insights JSON: %w", err)
	}
	return parseInsights(in.SessionID, items)
}

func (g *GeminiGenerator) Swot(ctx context.Context, in AnalysisInput) ([]*domain.SwotEntry, error) {
	clean, err := g.generate(ctx, swotPrompt, in)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("insight: unmarshal SWOT JSON: %w", err)
	}
	return parseSwot(in.SessionID, items)
}

func (g *GeminiGenerator) SavingsPotentials(ctx context.Context, in AnalysisInput) ([]*domain.SavingsPotential, error) {
	clean, err := g.generate(ctx, savingsPrompt, in)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("insight: unmarshal savings JSON: %w", err)
	}
	return parseSavingsPotentials(in.SessionID, items)
}

func (g *GeminiGenerator) OverallAssessment(ctx context.Context, in AnalysisInput) (domain.Assessment, error) {
	clean, err := g.generate(ctx, assessmentPrompt, in)
	if err != nil {
		return domain.Assessment{}, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return domain.Assessment{}, fmt.Errorf("insight: unmarshal assessment JSON: %w", err)
	}
	return parseAssessment(obj)
}
