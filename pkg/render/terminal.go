// Package render draws dashboard views to a terminal with pterm, or
// encodes them as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/aggregate"
	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/pterm/pterm"
)

const dateLayout = "2006-01-02"

// Terminal renders views as pterm sections, tables and bar charts.
type Terminal struct {
	W io.Writer
}

func (t Terminal) section(title string) {
	pterm.DefaultSection.WithWriter(t.W).Println(title)
}

// Summary draws the officer pending-tasks overview.
func (t Terminal) Summary(v SummaryView) error {
	t.advisories(v.Meta.Advisory)

	s := v.Summary
	pterm.Fprintln(t.W, fmt.Sprintf("Total pending: %d   Officers: %d   Departments: %d   Overdue: %d",
		s.TotalPending, s.Officers, s.Departments, s.Overdue))
	if s.TotalPending == 0 {
		pterm.Info.WithWriter(t.W).Println("No pending tasks.")
		return nil
	}

	t.section("Pending tasks by officer")
	if err := t.bars(v.ByOfficer); err != nil {
		return err
	}
	t.section("Pending tasks by department")
	if err := t.bars(v.ByDepartment); err != nil {
		return err
	}

	t.section("Summary by officer")
	data := pterm.TableData{{"Officer", "Total Tasks", "Priority Breakdown", "Avg Days Pending"}}
	for _, row := range v.Officers {
		data = append(data, []string{row.Officer, strconv.Itoa(row.Total), row.Breakdown, optInt(row.AverageDays)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(t.W).Render()
}

// Priority draws the task priority dashboard.
func (t Terminal) Priority(v PriorityView) error {
	t.advisories(v.Meta.Advisory)

	t.section("Priority distribution")
	if len(v.Distribution) == 0 {
		pterm.Info.WithWriter(t.W).Println("No pending tasks.")
		return nil
	}
	bars := make(pterm.Bars, 0, len(v.Distribution))
	for _, sh := range v.Distribution {
		bars = append(bars, pterm.Bar{
			Label: fmt.Sprintf("%s (%.1f%%)", sh.Priority, sh.Percent),
			Value: sh.Count,
			Style: priorityStyle(sh.Priority),
		})
	}
	if err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).WithWriter(t.W).Render(); err != nil {
		return err
	}

	t.section("Oldest pending task")
	if v.Oldest == nil {
		pterm.Fprintln(t.W, "No pending task has an assigned date.")
	} else {
		o := v.Oldest
		pterm.Fprintln(t.W, fmt.Sprintf("%s: %s (%s, %s) pending %d days",
			o.ID, orDash(o.Subject), o.Officer, o.Department, *o.DaysPending))
	}

	t.section("Priority by officer")
	if err := t.breakdown("Officer", v.ByOfficer); err != nil {
		return err
	}
	t.section("Priority by department")
	return t.breakdown("Department", v.ByDepartment)
}

// List draws a detailed task table.
func (t Terminal) List(tasks []model.Task) error {
	if len(tasks) == 0 {
		pterm.Info.WithWriter(t.W).Println("No tasks match the filters.")
		return nil
	}
	data := pterm.TableData{{"ID", "Subject", "Department", "Officer", "Priority", "Status", "Assigned", "Days", "Due"}}
	for _, task := range tasks {
		data = append(data, []string{
			task.ID,
			orDash(task.Subject),
			task.Department,
			task.Officer,
			string(task.Priority),
			string(task.Status),
			optDate(task.AssignedDate),
			optInt(task.DaysPending),
			optDate(task.DueDate),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(t.W).Render(); err != nil {
		return err
	}
	pterm.Fprintln(t.W, fmt.Sprintf("%d tasks", len(tasks)))
	return nil
}

// Failure reports a load that produced no data.
func (t Terminal) Failure(d *model.Diagnostic) {
	pterm.Error.WithWriter(t.W).Println("Could not load the task sheet: " + d.Message)
	if len(d.Columns) > 0 {
		pterm.Fprintln(t.W, "Columns found: "+strings.Join(d.Columns, ", "))
	}
}

func (t Terminal) advisories(advs []model.Diagnostic) {
	for _, a := range advs {
		pterm.Warning.WithWriter(t.W).Println(a.Message)
	}
}

func (t Terminal) bars(counts []aggregate.Count) error {
	bars := make(pterm.Bars, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, pterm.Bar{Label: c.Key, Value: c.Count})
	}
	return pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).WithWriter(t.W).Render()
}

func (t Terminal) breakdown(label string, b aggregate.Breakdown) error {
	header := []string{label}
	for _, p := range model.Priorities {
		header = append(header, string(p))
	}
	data := pterm.TableData{header}
	for _, key := range b.Keys() {
		row := []string{key}
		for _, p := range model.Priorities {
			row = append(row, strconv.Itoa(b[key][p]))
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(t.W).Render()
}

func priorityStyle(p model.Priority) *pterm.Style {
	switch p {
	case model.MostUrgent:
		return pterm.NewStyle(pterm.FgMagenta)
	case model.High:
		return pterm.NewStyle(pterm.FgRed)
	case model.Medium:
		return pterm.NewStyle(pterm.FgYellow)
	case model.Low:
		return pterm.NewStyle(pterm.FgGreen)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func optDate(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
