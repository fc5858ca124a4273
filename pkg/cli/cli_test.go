package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

const sheetCSV = "Task ID,Assign To,Dealing Branch,Priority,Status,Assigned Date\n" +
	"T1,John Smith,Finance,High Priority,Pending,2024-08-20\n" +
	"T2,john smith,Finance,urgent,Completed,2024-08-01\n" +
	"T3,Jane Doe,HR,Low,In Progress,2024-08-25\n"

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("TASKSHEET_CONFIG_DIR", t.TempDir())
	path := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetCSV), 0600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryJSON(t *testing.T) {
	path := setup(t)
	out, err := run(t, "summary", path, "--json", "--now", "2024-08-30", "--no-cache")
	require.NoError(t, err)

	var v struct {
		Summary struct {
			TotalPending int `json:"total_pending"`
		} `json:"summary"`
		AverageDays map[string]int `json:"average_days_by_officer"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	assert.Equal(t, 2, v.Summary.TotalPending)
	assert.Equal(t, map[string]int{"John Smith": 10, "Jane Doe": 5}, v.AverageDays)
}

func TestSummaryTerminal(t *testing.T) {
	path := setup(t)
	out, err := run(t, "summary", path, "--now", "2024-08-30")
	require.NoError(t, err)
	assert.Contains(t, out, "Total pending: 2")
	assert.Contains(t, out, "H:1 M:0 L:0")
}

func TestPriorityTerminal(t *testing.T) {
	path := setup(t)
	out, err := run(t, "priority", path, "--now", "2024-08-30", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "T1: - (John Smith, Finance) pending 10 days")
}

func TestListFilters(t *testing.T) {
	path := setup(t)
	out, err := run(t, "list", path, "--json", "--officer", "JOHN SMITH", "--all", "--no-cache")
	require.NoError(t, err)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks), out)
	require.Len(t, tasks, 2)
	assert.Equal(t, model.MostUrgent, tasks[1].Priority)

	out, err = run(t, "list", path, "--json", "--priority", "low", "--no-cache")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &tasks), out)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T3", tasks[0].ID)
}

func TestListPriorityUsesSheetVocabulary(t *testing.T) {
	path := setup(t)
	for _, p := range []string{"urgent", "most urgent", "Most  Urgent"} {
		out, err := run(t, "list", path, "--json", "--all", "--priority", p, "--no-cache")
		require.NoError(t, err)

		var tasks []model.Task
		require.NoError(t, json.Unmarshal([]byte(out), &tasks), out)
		require.Len(t, tasks, 1, p)
		assert.Equal(t, "T2", tasks[0].ID)
	}
}

func TestMissingSourceFails(t *testing.T) {
	setup(t)
	_, err := run(t, "summary", filepath.Join(t.TempDir(), "absent.csv"), "--no-cache")
	require.Error(t, err)

	var diag *model.Diagnostic
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, model.SourceUnreadable, diag.Kind)

	var buf bytes.Buffer
	report(&buf, err)
	assert.Contains(t, buf.String(), "Could not load the task sheet")
}

func TestNoSourceConfigured(t *testing.T) {
	setup(t)
	_, err := run(t, "summary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidSource))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestInvalidNow(t *testing.T) {
	path := setup(t)
	_, err := run(t, "summary", path, "--now", "someday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --now")
}

func TestConfigSetSourceAndShow(t *testing.T) {
	path := setup(t)

	out, err := run(t, "config", "set-source", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Default source set to "+path)

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "source: "+path)
	assert.Contains(t, out, "include_unassigned: true")

	out, err = run(t, "summary", "--json", "--now", "2024-08-30")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"total_pending": 2`)
}

func TestAliasesFlag(t *testing.T) {
	setup(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "custom.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Handled By,Section,Status\nAlice,Legal,Pending\n"), 0600))
	aliasPath := filepath.Join(dir, "aliases.yaml")
	require.NoError(t, os.WriteFile(aliasPath, []byte("officer: [\"handled by\"]\ndepartment: [\"section\"]\n"), 0600))

	out, err := run(t, "list", csvPath, "--json", "--aliases", aliasPath, "--no-cache")
	require.NoError(t, err)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks), out)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Alice", tasks[0].Officer)
	assert.Equal(t, "Legal", tasks[0].Department)
}

func TestWatchRejectsURLs(t *testing.T) {
	setup(t)
	_, err := run(t, "watch", "https://example.com/tasks.csv", "--no-cache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a local file")
}
