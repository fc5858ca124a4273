package normalize

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/columns"
	"github.com/harrisonrobin/tasksheet/pkg/model"
)

// Normalizer turns raw sheet rows into canonical tasks.
type Normalizer struct {
	rec   *columns.Reconciler
	dates DateParser
}

// New returns a Normalizer using rec for header mapping.
func New(rec *columns.Reconciler, dates DateParser) *Normalizer {
	if rec == nil {
		rec = columns.NewReconciler(columns.DefaultAliases)
	}
	return &Normalizer{rec: rec, dates: dates}
}

// Result is the output of normalizing one table.
type Result struct {
	Columns    []string
	Mapping    map[string]string
	Tasks      []model.Task
	Advisories []model.Diagnostic
}

// Normalize maps headers, then normalizes every row against the reference
// time ref. It never fails; problems are returned as advisories.
func (n *Normalizer) Normalize(headers []string, rows [][]string, ref time.Time) Result {
	m := n.rec.Reconcile(headers)
	res := Result{
		Columns:    m.Headers,
		Mapping:    m.Names(),
		Tasks:      make([]model.Task, 0, len(rows)),
		Advisories: m.Advisories(),
	}
	for i, row := range rows {
		task, adv := n.row(m, i+1, row, ref)
		res.Tasks = append(res.Tasks, task)
		res.Advisories = append(res.Advisories, adv...)
	}
	return res
}

func (n *Normalizer) row(m columns.Mapping, num int, row []string, ref time.Time) (model.Task, []model.Diagnostic) {
	cell := func(f columns.Field) string {
		i, ok := m.Index[f]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var adv []model.Diagnostic
	date := func(f columns.Field) *time.Time {
		raw := CleanText(cell(f))
		if raw == "" {
			return nil
		}
		d, ok := n.dates.Parse(raw)
		if !ok {
			adv = append(adv, model.Diagnostic{
				Kind:    model.FieldUnparseable,
				Message: fmt.Sprintf("row %d: cannot read %s %q as a date", num, f, raw),
				Row:     num,
				Field:   string(f),
				Value:   raw,
			})
			return nil
		}
		return &d
	}

	t := model.Task{
		ID:           CleanText(cell(columns.ID)),
		Subject:      CleanText(cell(columns.Subject)),
		Department:   orDefault(Title(cell(columns.Department)), model.UnknownDepartment),
		Officer:      orDefault(Title(cell(columns.Officer)), model.UnassignedOfficer),
		Priority:     ClassifyPriority(cell(columns.Priority)),
		Status:       ClassifyStatus(cell(columns.Status)),
		AssignedDate: date(columns.AssignedDate),
		DueDate:      date(columns.DueDate),
		FileLink:     CleanText(cell(columns.FileLink)),
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("row-%d", num)
	}
	if t.AssignedDate != nil {
		d := DaysPending(ref, *t.AssignedDate)
		t.DaysPending = &d
	}

	for i, f := range m.Fields {
		if f != "" || m.Headers[i] == "" {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]string)
		}
		if i < len(row) {
			t.Extra[m.Headers[i]] = CleanText(row[i])
		} else {
			t.Extra[m.Headers[i]] = ""
		}
	}
	return t, adv
}

// Renormalize runs an already normalized task through the same rules.
// Canonical input comes back unchanged apart from DaysPending, which is
// recomputed for ref.
func Renormalize(t model.Task, ref time.Time) model.Task {
	out := t
	out.ID = CleanText(t.ID)
	out.Subject = CleanText(t.Subject)
	out.Department = orDefault(Title(t.Department), model.UnknownDepartment)
	out.Officer = orDefault(Title(t.Officer), model.UnassignedOfficer)
	out.Priority = ClassifyPriority(string(t.Priority))
	out.Status = ClassifyStatus(string(t.Status))
	out.FileLink = CleanText(t.FileLink)
	out.DaysPending = nil
	if t.AssignedDate != nil {
		d := DaysPending(ref, *t.AssignedDate)
		out.DaysPending = &d
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
