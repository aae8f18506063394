package types

// KPI is a persisted metric definition. Name is the unique key; saving an
// existing name replaces the definition (upsert semantics). Deletion is
// an external concern.
type KPI struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Formula     string   `json:"formula"`
	TableName   string   `json:"table_name"`
	Columns     []string `json:"columns,omitempty"`
}

// Insight is a persisted analytical finding. KPIName is a weak reference
// to KPI.Name, not ownership: deleting the KPI elsewhere must not corrupt
// insight rows, so it is nullable and carries no foreign-key constraint.
type Insight struct {
	ID          int64    `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	KPIName     *string  `json:"kpi_name,omitempty"`
	Formula     string   `json:"formula"`
	Schedule    string   `json:"schedule,omitempty"`
	ExecTime    string   `json:"exec_time,omitempty"`
	AlertHigh   *float64 `json:"alert_high,omitempty"`
	AlertLow    *float64 `json:"alert_low,omitempty"`
}
