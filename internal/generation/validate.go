package generation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/llm"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/schemas"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

//go:embed generation_result.schema.json
var resultSchema string

// MalformedGenerationResult reports a generation response that fails the
// shape contract: unparseable JSON, missing required fields, or a
// confidence outside [0,1]. Shape failures fail the step; only
// reference-grounding violations soft-fail (see ValidateResult).
type MalformedGenerationResult struct {
	Detail string
	Cause  error
}

func (e *MalformedGenerationResult) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed generation result: %s: %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("malformed generation result: %s", e.Detail)
}

func (e *MalformedGenerationResult) Unwrap() error {
	return e.Cause
}

// ValidateResult parses and validates a raw generation response. Shape
// violations return *MalformedGenerationResult. Declared table/collection
// references absent from the supplied schema downgrade the result to
// can_answer=false instead of failing, regardless of declared confidence:
// this guards against hallucinated references without killing the run.
// When can_answer is false the query is cleared so callers cannot use it.
func ValidateResult(raw string, schema types.SchemaSnapshot) (*types.GenerationResult, error) {
	cleaned := llm.CleanJSONBlock(raw)

	if err := schemas.ValidateJSONString(resultSchema, cleaned); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &MalformedGenerationResult{Detail: "response does not match contract", Cause: ve}
		}
		return nil, &MalformedGenerationResult{Detail: "response is not valid JSON", Cause: err}
	}

	var result types.GenerationResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &MalformedGenerationResult{Detail: "response is not valid JSON", Cause: err}
	}

	if !result.CanAnswer {
		result.Query = ""
		return &result, nil
	}

	var missing []string
	for _, ref := range result.References() {
		if !schema.HasTable(ref) {
			missing = append(missing, ref)
		}
	}
	if len(missing) > 0 {
		result.CanAnswer = false
		result.Query = ""
		result.Reason = fmt.Sprintf("generated query references unknown tables: %s", strings.Join(missing, ", "))
	}

	return &result, nil
}
