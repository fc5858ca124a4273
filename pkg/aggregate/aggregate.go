// Package aggregate computes the dashboard views over normalized tasks.
// Every function is pure and insensitive to input order.
package aggregate

import (
	"math"
	"sort"

	"github.com/harrisonrobin/tasksheet/pkg/model"
)

// Options controls how officer-keyed views treat rows without an assignee.
type Options struct {
	// IncludeUnassigned keeps Unassigned/Unknown officers as their own
	// bucket. When false those rows are left out of officer views.
	IncludeUnassigned bool
}

// Default includes unassigned rows.
var Default = Options{IncludeUnassigned: true}

func (o Options) countsOfficer(t model.Task) bool {
	return o.IncludeUnassigned || t.HasOfficer()
}

// CountByOfficer counts non-Completed tasks per officer.
func (o Options) CountByOfficer(tasks []model.Task) map[string]int {
	out := make(map[string]int)
	for _, t := range tasks {
		if t.IsPending() && o.countsOfficer(t) {
			out[t.Officer]++
		}
	}
	return out
}

// AverageDaysPendingByOfficer is the rounded mean of DaysPending per
// officer. Tasks without DaysPending are ignored, and officers left with
// no values are omitted.
func (o Options) AverageDaysPendingByOfficer(tasks []model.Task) map[string]int {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, t := range tasks {
		if t.DaysPending == nil || !o.countsOfficer(t) {
			continue
		}
		sums[t.Officer] += *t.DaysPending
		counts[t.Officer]++
	}
	out := make(map[string]int, len(counts))
	for officer, n := range counts {
		out[officer] = int(math.Round(float64(sums[officer]) / float64(n)))
	}
	return out
}

// CountByDepartment counts tasks per department.
func CountByDepartment(tasks []model.Task) map[string]int {
	out := make(map[string]int)
	for _, t := range tasks {
		out[t.Department]++
	}
	return out
}

// CountByPriority counts tasks per priority bucket.
func CountByPriority(tasks []model.Task) map[model.Priority]int {
	out := make(map[model.Priority]int)
	for _, t := range tasks {
		out[t.Priority]++
	}
	return out
}

// OldestPending returns the non-Completed task with the largest
// DaysPending, or nil. Tasks without DaysPending never qualify. Ties go
// to the first one seen.
func OldestPending(tasks []model.Task) *model.Task {
	var oldest *model.Task
	for i := range tasks {
		t := &tasks[i]
		if !t.IsPending() || t.DaysPending == nil {
			continue
		}
		if oldest == nil || *t.DaysPending > *oldest.DaysPending {
			oldest = t
		}
	}
	if oldest == nil {
		return nil
	}
	found := *oldest
	return &found
}

// Pending returns the tasks that are not Completed, in input order.
func Pending(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsPending() {
			out = append(out, t)
		}
	}
	return out
}

// Count is one row of a sorted count table.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Sorted orders counts by count descending, then key ascending.
func Sorted(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, n := range m {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// SortedPriorities returns priority counts in bucket order, skipping
// empty buckets.
func SortedPriorities(m map[model.Priority]int) []Count {
	var out []Count
	for _, p := range model.Priorities {
		if n := m[p]; n > 0 {
			out = append(out, Count{Key: string(p), Count: n})
		}
	}
	return out
}
