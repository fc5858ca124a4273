package columns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIgnoresCaseAndSpacing(t *testing.T) {
	for _, h := range []string{"Assign To", " assign_to ", "ASSIGNTO", "assign-to", "Assign\tTo"} {
		assert.Equal(t, "assignto", Key(h), h)
	}
}

func TestLookupAliases(t *testing.T) {
	r := NewReconciler(DefaultAliases)
	cases := map[string]Field{
		"Assign To":         Officer,
		" assign_to ":       Officer,
		"ASSIGNTO":          Officer,
		"Marked To Officer": Officer,
		"Dealing Branch":    Department,
		"department":        Department,
		"Priority Level":    Priority,
		"Case Status":       Status,
		"Task Status":       Status,
		"Entry Date":        AssignedDate,
		"Pending Since":     AssignedDate,
		"Start Date":        AssignedDate,
		"Due Date":          DueDate,
		"Open File":         FileLink,
		"Task ID":           ID,
		"S.No":              ID,
		"Task Name":         Subject,
		"assignedDate":      AssignedDate,
	}
	for header, want := range cases {
		got, ok := r.Lookup(header)
		if assert.True(t, ok, header) {
			assert.Equal(t, want, got, header)
		}
	}

	_, ok := r.Lookup("Remarks")
	assert.False(t, ok)
}

func TestReconcilePassesThroughUnknownColumns(t *testing.T) {
	r := NewReconciler(DefaultAliases)
	m := r.Reconcile([]string{"Task ID", " Remarks ", "Assign To", "Priority", "Status", "Dealing Branch", "Assigned Date"})

	assert.Empty(t, m.Missing)
	assert.Equal(t, "", string(m.Fields[1]))
	assert.Equal(t, "Remarks", m.Headers[1])

	names := m.Names()
	assert.Equal(t, "Remarks", names["Remarks"])
	assert.Equal(t, "officer", names["Assign To"])
	assert.Equal(t, "id", names["Task ID"])
}

func TestReconcileMissingColumnsAreAdvisories(t *testing.T) {
	r := NewReconciler(DefaultAliases)
	headers := []string{"Officer", "Priority", "Status", "Date"}
	m := r.Reconcile(headers)

	assert.Equal(t, []Field{Department}, m.Missing)
	assert.False(t, m.Has(Department))

	adv := m.Advisories()
	require.Len(t, adv, 1)
	assert.Equal(t, model.SchemaMismatch, adv[0].Kind)
	assert.Equal(t, "department", adv[0].Field)
	assert.Equal(t, headers, adv[0].Columns)
}

func TestReconcileEmptyHeaderRow(t *testing.T) {
	r := NewReconciler(DefaultAliases)
	m := r.Reconcile(nil)
	assert.Len(t, m.Missing, len(Expected))
	assert.Empty(t, m.Index)
}

func TestReconcileFirstColumnWins(t *testing.T) {
	r := NewReconciler(DefaultAliases)
	m := r.Reconcile([]string{"Assign To", "Assigned To", "Department"})

	assert.Equal(t, 0, m.Index[Officer])
	require.Len(t, m.Dupes, 1)
	assert.Equal(t, Duplicate{Header: "Assigned To", Field: Officer}, m.Dupes[0])
	assert.Equal(t, "Assigned To", m.Names()["Assigned To"])

	var dup *model.Diagnostic
	for _, d := range m.Advisories() {
		if d.Kind == model.DuplicateColumn {
			d := d
			dup = &d
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, "officer", dup.Field)
}

func TestReconcileStripsBOM(t *testing.T) {
	r := NewReconciler(DefaultAliases)
	m := r.Reconcile([]string{"\ufeffTask ID", "Officer"})
	assert.True(t, m.Has(ID))
	assert.Equal(t, "Task ID", m.Headers[0])
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("officer: [\"handled by\", owner]\nDepartment: [section]\n"), 0o600))

	extra, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"handled by", "owner"}, extra[Officer])
	assert.Equal(t, []string{"section"}, extra[Department])

	r := NewReconciler(DefaultAliases.Merge(extra))
	f, ok := r.Lookup("Handled_By")
	require.True(t, ok)
	assert.Equal(t, Officer, f)

	f, ok = r.Lookup("Assign To")
	require.True(t, ok, "built-in aliases survive a merge")
	assert.Equal(t, Officer, f)
}

func TestLoadAliasesUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colour: [hue]\n"), 0o600))

	_, err := LoadAliases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := AliasTable{Officer: {"officer"}}
	merged := base.Merge(AliasTable{Officer: {"owner"}})
	assert.Equal(t, []string{"officer"}, base[Officer])
	assert.Equal(t, []string{"officer", "owner"}, merged[Officer])
}

func TestMergeOverrideWins(t *testing.T) {
	merged := DefaultAliases.Merge(AliasTable{DueDate: {"Date"}})
	assert.NotContains(t, merged[AssignedDate], "date")
	assert.Contains(t, merged[AssignedDate], "entry date")

	for i := 0; i < 50; i++ {
		f, ok := NewReconciler(merged).Lookup("Date")
		require.True(t, ok)
		require.Equal(t, DueDate, f)
	}
}

func TestNewReconcilerCollisionsFollowFieldOrder(t *testing.T) {
	table := AliasTable{DueDate: {"when"}, AssignedDate: {"when"}, Officer: {"status"}}
	for i := 0; i < 50; i++ {
		r := NewReconciler(table)
		f, _ := r.Lookup("When")
		require.Equal(t, AssignedDate, f)
		f, _ = r.Lookup("Status")
		require.Equal(t, Status, f, "canonical names keep their field")
	}
}

func TestLoadAliasesRejectsCollisions(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"twice":     "officer: [owner]\ndepartment: [owner]\n",
		"canonical": "officer: [status]\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := LoadAliases(path)
		assert.Error(t, err, name)
	}
}
