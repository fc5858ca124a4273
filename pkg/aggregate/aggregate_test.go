package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, 8, 30, 9, 0, 0, 0, time.UTC)

func days(n int) *int { return &n }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func task(officer, dept string, p model.Priority, s model.Status, d *int) model.Task {
	return model.Task{Officer: officer, Department: dept, Priority: p, Status: s, DaysPending: d}
}

func TestCountByOfficerSkipsCompleted(t *testing.T) {
	tasks := []model.Task{
		task("John Smith", "Unknown", model.High, model.Pending, days(10)),
		task("John Smith", "Unknown", model.MostUrgent, model.Completed, days(29)),
	}
	assert.Equal(t, map[string]int{"John Smith": 1}, Default.CountByOfficer(tasks))
}

func TestCountByOfficerUnknownStatusIsPending(t *testing.T) {
	tasks := []model.Task{
		task("Alice", "HR", model.Low, model.Unknown, nil),
		task("Alice", "HR", model.Low, model.Pending, nil),
	}
	assert.Equal(t, map[string]int{"Alice": 2}, Default.CountByOfficer(tasks))
}

func TestUnassignedOption(t *testing.T) {
	tasks := []model.Task{
		task("Alice", "HR", model.Low, model.Pending, days(3)),
		task(model.UnassignedOfficer, "HR", model.High, model.Pending, days(7)),
		task(model.UnknownOfficer, "IT", model.High, model.Pending, days(9)),
	}

	included := Options{IncludeUnassigned: true}
	assert.Equal(t, map[string]int{"Alice": 1, "Unassigned": 1, "Unknown": 1}, included.CountByOfficer(tasks))
	assert.Equal(t, map[string]int{"Alice": 3, "Unassigned": 7, "Unknown": 9}, included.AverageDaysPendingByOfficer(tasks))

	excluded := Options{IncludeUnassigned: false}
	assert.Equal(t, map[string]int{"Alice": 1}, excluded.CountByOfficer(tasks))
	assert.Equal(t, map[string]int{"Alice": 3}, excluded.AverageDaysPendingByOfficer(tasks))
	assert.Equal(t, []string{"Alice"}, excluded.Officers(tasks, ""))
	assert.Equal(t, 1, excluded.Summarize(tasks, ref).Officers)

	// Department and priority views are not officer keyed.
	assert.Equal(t, map[string]int{"HR": 2, "IT": 1}, CountByDepartment(tasks))
}

func TestAverageDaysPendingIgnoresMissing(t *testing.T) {
	tasks := []model.Task{
		task("A", "X", model.Low, model.Pending, days(5)),
		task("A", "X", model.Low, model.Pending, days(15)),
		task("A", "X", model.Low, model.Pending, nil),
		task("B", "X", model.Low, model.Pending, nil),
	}
	got := Default.AverageDaysPendingByOfficer(tasks)
	assert.Equal(t, map[string]int{"A": 10}, got)
	_, ok := got["B"]
	assert.False(t, ok, "officers without any DaysPending are omitted")
}

func TestAverageDaysPendingRounds(t *testing.T) {
	tasks := []model.Task{
		task("A", "X", model.Low, model.Pending, days(1)),
		task("A", "X", model.Low, model.Pending, days(2)),
		task("B", "X", model.Low, model.Pending, days(1)),
		task("B", "X", model.Low, model.Pending, days(1)),
		task("B", "X", model.Low, model.Pending, days(2)),
	}
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, Default.AverageDaysPendingByOfficer(tasks))
}

func TestCountByPriority(t *testing.T) {
	tasks := []model.Task{
		task("A", "X", model.High, model.Pending, nil),
		task("B", "X", model.High, model.Pending, nil),
		task("C", "X", model.Unspecified, model.Pending, nil),
	}
	assert.Equal(t, map[model.Priority]int{model.High: 2, model.Unspecified: 1}, CountByPriority(tasks))
	assert.Equal(t, []Count{{"High", 2}, {"Unspecified", 1}}, SortedPriorities(CountByPriority(tasks)))
}

func TestOldestPending(t *testing.T) {
	tasks := []model.Task{
		task("A", "X", model.Low, model.Pending, nil),
		task("B", "X", model.Low, model.Completed, days(90)),
		task("C", "X", model.Low, model.Pending, days(12)),
		task("D", "X", model.Low, model.Unknown, days(40)),
	}
	oldest := OldestPending(tasks)
	require.NotNil(t, oldest)
	assert.Equal(t, "D", oldest.Officer)
	assert.Equal(t, 40, *oldest.DaysPending)

	oldest.Officer = "changed"
	assert.Equal(t, "D", tasks[3].Officer, "result is a copy")
}

func TestOldestPendingTies(t *testing.T) {
	tasks := []model.Task{
		task("A", "X", model.Low, model.Pending, days(7)),
		task("B", "X", model.Low, model.Pending, days(7)),
	}
	oldest := OldestPending(tasks)
	require.NotNil(t, oldest)
	assert.Equal(t, 7, *oldest.DaysPending)
}

func TestOldestPendingNone(t *testing.T) {
	assert.Nil(t, OldestPending(nil))
	assert.Nil(t, OldestPending([]model.Task{task("A", "X", model.Low, model.Pending, nil)}))
	assert.Nil(t, OldestPending([]model.Task{task("A", "X", model.Low, model.Completed, days(3))}))
}

func TestAggregatesAreOrderInsensitive(t *testing.T) {
	tasks := []model.Task{
		task("A", "X", model.High, model.Pending, days(3)),
		task("B", "Y", model.Low, model.Pending, days(8)),
		task("A", "Y", model.Medium, model.Completed, days(1)),
		task("C", "X", model.High, model.Unknown, nil),
	}
	reversed := make([]model.Task, len(tasks))
	for i := range tasks {
		reversed[len(tasks)-1-i] = tasks[i]
	}

	assert.Equal(t, Default.CountByOfficer(tasks), Default.CountByOfficer(reversed))
	assert.Equal(t, CountByDepartment(tasks), CountByDepartment(reversed))
	assert.Equal(t, CountByPriority(tasks), CountByPriority(reversed))
	assert.Equal(t, Default.AverageDaysPendingByOfficer(tasks), Default.AverageDaysPendingByOfficer(reversed))
	assert.Equal(t, OldestPending(tasks), OldestPending(reversed))
}

func TestSorted(t *testing.T) {
	got := Sorted(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1})
	want := []Count{{"c", 5}, {"a", 2}, {"b", 2}, {"d", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sorted mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, Sorted(nil))
}
