package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/model"
)

// Summary holds the headline metrics of the pending-tasks overview.
type Summary struct {
	TotalPending int                    `json:"total_pending"`
	Officers     int                    `json:"officers"`
	Departments  int                    `json:"departments"`
	ByPriority   map[model.Priority]int `json:"by_priority"`
	Overdue      int                    `json:"overdue"`
	Oldest       *model.Task            `json:"oldest,omitempty"`
}

// Summarize computes the headline metrics over the pending subset of tasks.
func (o Options) Summarize(tasks []model.Task, ref time.Time) Summary {
	pending := Pending(tasks)
	return Summary{
		TotalPending: len(pending),
		Officers:     len(o.CountByOfficer(pending)),
		Departments:  len(CountByDepartment(pending)),
		ByPriority:   CountByPriority(pending),
		Overdue:      len(Overdue(pending, ref)),
		Oldest:       OldestPending(pending),
	}
}

// Breakdown is a count per priority bucket under one grouping key.
type Breakdown map[string]map[model.Priority]int

// PriorityByOfficer counts tasks per officer and priority.
func (o Options) PriorityByOfficer(tasks []model.Task) Breakdown {
	out := make(Breakdown)
	for _, t := range tasks {
		if !o.countsOfficer(t) {
			continue
		}
		out.add(t.Officer, t.Priority)
	}
	return out
}

// PriorityByDepartment counts tasks per department and priority.
func PriorityByDepartment(tasks []model.Task) Breakdown {
	out := make(Breakdown)
	for _, t := range tasks {
		out.add(t.Department, t.Priority)
	}
	return out
}

func (b Breakdown) add(key string, p model.Priority) {
	if b[key] == nil {
		b[key] = make(map[model.Priority]int)
	}
	b[key][p]++
}

// Keys returns the grouping keys sorted by their total, largest first.
func (b Breakdown) Keys() []string {
	totals := make(map[string]int, len(b))
	for k, counts := range b {
		for _, n := range counts {
			totals[k] += n
		}
	}
	keys := make([]string, 0, len(totals))
	for _, c := range Sorted(totals) {
		keys = append(keys, c.Key)
	}
	return keys
}

// OfficerRow is one line of the per-officer summary table.
type OfficerRow struct {
	Officer     string `json:"officer"`
	Total       int    `json:"total"`
	Breakdown   string `json:"breakdown"`
	AverageDays *int   `json:"average_days,omitempty"`
}

// OfficerSummary builds the per-officer table over pending tasks, busiest
// officer first.
func (o Options) OfficerSummary(tasks []model.Task) []OfficerRow {
	pending := Pending(tasks)
	byPriority := o.PriorityByOfficer(pending)
	averages := o.AverageDaysPendingByOfficer(pending)

	var rows []OfficerRow
	for _, c := range Sorted(o.CountByOfficer(pending)) {
		row := OfficerRow{
			Officer:   c.Key,
			Total:     c.Count,
			Breakdown: breakdownLabel(byPriority[c.Key]),
		}
		if avg, ok := averages[c.Key]; ok {
			row.AverageDays = &avg
		}
		rows = append(rows, row)
	}
	return rows
}

// breakdownLabel renders counts as "H:2 M:1 L:0", prefixed with the
// urgent count when there is one.
func breakdownLabel(counts map[model.Priority]int) string {
	label := fmt.Sprintf("H:%d M:%d L:%d", counts[model.High], counts[model.Medium], counts[model.Low])
	if n := counts[model.MostUrgent]; n > 0 {
		label = fmt.Sprintf("U:%d %s", n, label)
	}
	return label
}

// Filter selects tasks for the list view. Empty criteria match everything.
type Filter struct {
	Department string         `form:"department" json:"department,omitempty"`
	Officer    string         `form:"officer" json:"officer,omitempty"`
	Priority   model.Priority `form:"priority" json:"priority,omitempty"`
}

// Apply returns the tasks matching every set criterion, in input order.
// Comparisons ignore case.
func (f Filter) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Department != "" && !strings.EqualFold(f.Department, t.Department) {
			continue
		}
		if f.Officer != "" && !strings.EqualFold(f.Officer, t.Officer) {
			continue
		}
		if f.Priority != "" && !strings.EqualFold(string(f.Priority), string(t.Priority)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Departments lists the distinct departments, sorted.
func Departments(tasks []model.Task) []string {
	return distinct(tasks, func(t model.Task) (string, bool) { return t.Department, true })
}

// Officers lists the distinct officers, sorted, optionally restricted to
// one department.
func (o Options) Officers(tasks []model.Task, department string) []string {
	return distinct(tasks, func(t model.Task) (string, bool) {
		if department != "" && !strings.EqualFold(department, t.Department) {
			return "", false
		}
		return t.Officer, o.countsOfficer(t)
	})
}

func distinct(tasks []model.Task, key func(model.Task) (string, bool)) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range tasks {
		k, ok := key(t)
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Overdue returns pending tasks whose due date is before ref's day,
// most overdue first.
func Overdue(tasks []model.Task, ref time.Time) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.IsOverdue(ref) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out
}
