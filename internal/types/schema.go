// Package types provides type definitions for structured data used throughout the kpi-insight-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// MaxSampleValues bounds how many observed example values are carried per column.
const MaxSampleValues = 5

// ColumnInfo describes one column of an introspected table. SampleValues
// holds up to MaxSampleValues distinct values observed in the backend and
// is the only source of literals the generation subsystem may use.
type ColumnInfo struct {
	Name         string   `json:"name"`
	DeclaredType string   `json:"declared_type"`
	Description  string   `json:"description,omitempty"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// TableInfo describes one table (or collection, for document stores).
// Name is always the bare table name; catalog/schema levels are stored
// separately because qualification and quoting are dialect concerns.
type TableInfo struct {
	Name        string       `json:"name"`
	Catalog     string       `json:"catalog,omitempty"`
	Schema      string       `json:"schema,omitempty"`
	Description string       `json:"description,omitempty"`
	Columns     []ColumnInfo `json:"columns"`
}

// SchemaSnapshot is a point-in-time view of the backend metadata that a
// generated query is allowed to reference.
type SchemaSnapshot struct {
	Tables []TableInfo `json:"tables"`
}

// Table returns the table with the given bare name, matched
// case-insensitively. A qualified name matches on its last segment.
func (s SchemaSnapshot) Table(name string) (TableInfo, bool) {
	bare := BareTableName(name)
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, bare) {
			return t, true
		}
	}
	return TableInfo{}, false
}

// HasTable reports whether the snapshot contains the named table.
func (s SchemaSnapshot) HasTable(name string) bool {
	_, ok := s.Table(name)
	return ok
}

// TableNames returns the bare names of all tables in snapshot order.
func (s SchemaSnapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// BareTableName strips any catalog/schema qualification and quoting from
// a table reference, returning the trailing identifier.
func BareTableName(ref string) string {
	ref = strings.TrimSpace(ref)
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		ref = ref[idx+1:]
	}
	return strings.Trim(ref, "\"`[] ")
}
