package types

// GenerationResult is the structured response contract the generation
// service must satisfy when asked to produce a query. For document-store
// backends CollectionsUsed replaces TablesUsed; exactly one of the two is
// expected to be populated.
type GenerationResult struct {
	CanAnswer       bool     `json:"can_answer"`
	Reason          string   `json:"reason,omitempty"`
	Query           string   `json:"query,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	Confidence      float64  `json:"confidence"`
	Assumptions     []string `json:"assumptions,omitempty"`
	TablesUsed      []string `json:"tables_used,omitempty"`
	CollectionsUsed []string `json:"collections_used,omitempty"`
}

// References returns the tables or collections the result claims to use.
func (r GenerationResult) References() []string {
	if len(r.CollectionsUsed) > 0 {
		return r.CollectionsUsed
	}
	return r.TablesUsed
}
