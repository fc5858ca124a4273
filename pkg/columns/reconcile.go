package columns

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/tasksheet/pkg/model"
)

// Reconciler maps raw sheet headers onto canonical fields.
type Reconciler struct {
	byKey map[string]Field
}

// NewReconciler builds a reconciler from an alias table. The canonical
// field names themselves always match. When two fields list the same
// alias, the one earlier in Fields keeps it.
func NewReconciler(aliases AliasTable) *Reconciler {
	r := &Reconciler{byKey: make(map[string]Field)}
	for _, f := range Fields {
		r.byKey[Key(string(f))] = f
	}
	for _, f := range Fields {
		for _, alias := range aliases[f] {
			k := Key(alias)
			if _, taken := r.byKey[k]; k == "" || taken {
				continue
			}
			r.byKey[k] = f
		}
	}
	return r
}

// Mapping is the result of reconciling one header row.
type Mapping struct {
	Headers []string      // trimmed raw headers, by column index
	Fields  []Field       // canonical field per column; "" when passed through
	Index   map[Field]int // column index of each mapped field
	Missing []Field       // expected fields with no column
	Dupes   []Duplicate   // headers that repeated an already mapped field
}

// Duplicate is a header whose field was already claimed by an earlier column.
type Duplicate struct {
	Header string
	Field  Field
}

// Lookup returns the canonical field for a single header.
func (r *Reconciler) Lookup(header string) (Field, bool) {
	f, ok := r.byKey[Key(header)]
	return f, ok
}

// Reconcile maps headers to fields. It never fails: unknown headers pass
// through, and the first header claiming a field wins.
func (r *Reconciler) Reconcile(headers []string) Mapping {
	m := Mapping{
		Headers: make([]string, len(headers)),
		Fields:  make([]Field, len(headers)),
		Index:   make(map[Field]int),
	}
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		m.Headers[i] = h
		f, ok := r.Lookup(h)
		if !ok {
			continue
		}
		if _, taken := m.Index[f]; taken {
			m.Dupes = append(m.Dupes, Duplicate{Header: h, Field: f})
			continue
		}
		m.Fields[i] = f
		m.Index[f] = i
	}
	for _, f := range Expected {
		if _, ok := m.Index[f]; !ok {
			m.Missing = append(m.Missing, f)
		}
	}
	return m
}

// Names returns raw header -> output name, where mapped headers become
// their canonical field name and the rest keep their own name.
func (m Mapping) Names() map[string]string {
	out := make(map[string]string, len(m.Headers))
	for i, h := range m.Headers {
		if m.Fields[i] != "" {
			out[h] = string(m.Fields[i])
		} else {
			out[h] = h
		}
	}
	return out
}

// Has reports whether a column was mapped to f.
func (m Mapping) Has(f Field) bool {
	_, ok := m.Index[f]
	return ok
}

// Advisories describes missing and duplicated columns. They never block
// normalization.
func (m Mapping) Advisories() []model.Diagnostic {
	var out []model.Diagnostic
	for _, f := range m.Missing {
		out = append(out, model.Diagnostic{
			Kind:    model.SchemaMismatch,
			Message: fmt.Sprintf("no column for %s; using defaults", f),
			Columns: m.Headers,
			Field:   string(f),
		})
	}
	for _, d := range m.Dupes {
		out = append(out, model.Diagnostic{
			Kind:    model.DuplicateColumn,
			Message: fmt.Sprintf("column %q repeats %s; kept as an extra column", d.Header, d.Field),
			Columns: m.Headers,
			Field:   string(d.Field),
		})
	}
	return out
}
