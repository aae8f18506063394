package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/llm"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/prompts"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// Service is the external generation collaborator as the workflows consume
// it: a validated structured response for query generation, free text for
// insight generation.
type Service interface {
	GenerateQuery(ctx context.Context, req Request) (*types.GenerationResult, error)
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}

// LLMService implements Service on top of an llm.Client.
type LLMService struct {
	client llm.Client
}

// NewLLMService creates a generation service backed by the given client.
func NewLLMService(client llm.Client) *LLMService {
	return &LLMService{client: client}
}

// GenerateQuery renders the request prompt, invokes the model in JSON mode
// and validates the response against the grounding contract.
func (s *LLMService) GenerateQuery(ctx context.Context, req Request) (*types.GenerationResult, error) {
	prompt, err := req.Prompt()
	if err != nil {
		return nil, fmt.Errorf("failed to build generation prompt: %w", err)
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("generation service call failed: %w", err)
	}

	return ValidateResult(raw, req.Schema)
}

// GenerateInsight invokes the model for free-form insight text. The only
// contract on this path is a non-empty string.
func (s *LLMService) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	text, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("insight generation failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("insight generation returned empty text")
	}
	return text, nil
}

// BuildInsightPrompt renders the insight-text prompt for a KPI, the user
// intent and a JSON-serialized sample of the KPI's data.
func BuildInsightPrompt(kpi types.KPI, intent string, rows []map[string]any) (string, error) {
	tmpl, err := prompts.Get("generation.json", "insight_text")
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to serialize sample rows: %w", err)
	}

	return prompts.Format(tmpl, map[string]string{
		"KPIName":  kpi.Name,
		"Query":    kpi.Formula,
		"Intent":   intent,
		"RowCount": strconv.Itoa(len(rows)),
		"Rows":     string(data),
	}), nil
}
