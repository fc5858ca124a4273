package model

import "time"

// Priority is the canonical priority bucket of a task.
type Priority string

const (
	MostUrgent  Priority = "Most Urgent"
	High        Priority = "High"
	Medium      Priority = "Medium"
	Low         Priority = "Low"
	Unspecified Priority = "Unspecified"
)

// Priorities lists every bucket in descending urgency. Renderers and
// breakdowns iterate this order.
var Priorities = []Priority{MostUrgent, High, Medium, Low, Unspecified}

// Status is the canonical status of a task.
type Status string

const (
	Pending   Status = "Pending"
	Completed Status = "Completed"
	Unknown   Status = "Unknown"
)

// Default values substituted for missing text fields.
const (
	UnknownDepartment = "Unknown"
	UnassignedOfficer = "Unassigned"
	UnknownOfficer    = "Unknown"
)

// Task is one normalized row of a task sheet.
type Task struct {
	ID           string            `json:"id"`
	Subject      string            `json:"subject,omitempty"`
	Department   string            `json:"department"`
	Officer      string            `json:"officer"`
	Priority     Priority          `json:"priority"`
	Status       Status            `json:"status"`
	AssignedDate *time.Time        `json:"assigned_date,omitempty"`
	DueDate      *time.Time        `json:"due_date,omitempty"`
	DaysPending  *int              `json:"days_pending,omitempty"`
	FileLink     string            `json:"file_link,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"` // unmapped columns by original header
}

// IsPending reports whether the task is not completed. Unknown status
// counts as pending so unfinished work is never hidden.
func (t Task) IsPending() bool {
	return t.Status != Completed
}

// IsOverdue reports whether a pending task's due date falls before the
// calendar day of ref.
func (t Task) IsOverdue(ref time.Time) bool {
	if !t.IsPending() || t.DueDate == nil {
		return false
	}
	y, m, d := ref.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	return t.DueDate.Before(today)
}

// HasOfficer reports whether the task names a real assignee.
func (t Task) HasOfficer() bool {
	return t.Officer != "" && t.Officer != UnassignedOfficer && t.Officer != UnknownOfficer
}
