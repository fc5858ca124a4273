package model

import "time"

// DiagnosticKind classifies problems found while loading a sheet.
type DiagnosticKind string

const (
	// SourceUnreadable: the raw table could not be fetched or parsed. Fatal for the load.
	SourceUnreadable DiagnosticKind = "source_unreadable"
	// SchemaMismatch: a canonical column is absent; defaults were substituted.
	SchemaMismatch DiagnosticKind = "schema_mismatch"
	// DuplicateColumn: two headers mapped to the same canonical field.
	DuplicateColumn DiagnosticKind = "duplicate_column"
	// FieldUnparseable: a single cell could not be parsed and was left empty.
	FieldUnparseable DiagnosticKind = "field_unparseable"
)

// Diagnostic is a load problem reported as data.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Columns []string       `json:"columns,omitempty"` // raw headers found, for schema issues
	Row     int            `json:"row,omitempty"`     // 1-based data row
	Field   string         `json:"field,omitempty"`
	Value   string         `json:"value,omitempty"`
}

func (d Diagnostic) Error() string {
	return string(d.Kind) + ": " + d.Message
}

// Snapshot is the immutable result of one load: the normalized tasks plus
// everything needed to explain how they were derived.
type Snapshot struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	LoadedAt   time.Time         `json:"loaded_at"`
	Reference  time.Time         `json:"reference"`
	Columns    []string          `json:"columns"`
	Mapping    map[string]string `json:"mapping"`
	Tasks      []Task            `json:"tasks"`
	Advisories []Diagnostic      `json:"advisories,omitempty"`
}
