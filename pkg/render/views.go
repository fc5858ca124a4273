package render

import (
	"math"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/aggregate"
	"github.com/harrisonrobin/tasksheet/pkg/model"
)

// Meta identifies the snapshot a view was computed from.
type Meta struct {
	Snapshot  string             `json:"snapshot"`
	Source    string             `json:"source"`
	LoadedAt  time.Time          `json:"loaded_at"`
	Reference time.Time          `json:"reference"`
	Columns   []string           `json:"columns"`
	Mapping   map[string]string  `json:"mapping,omitempty"`
	Advisory  []model.Diagnostic `json:"advisories,omitempty"`
}

// SummaryView is the officer pending-tasks overview.
type SummaryView struct {
	Meta         Meta                   `json:"meta"`
	Summary      aggregate.Summary      `json:"summary"`
	ByOfficer    []aggregate.Count      `json:"by_officer"`
	ByDepartment []aggregate.Count      `json:"by_department"`
	Officers     []aggregate.OfficerRow `json:"officers"`
	AverageDays  map[string]int         `json:"average_days_by_officer"`
}

// Share is one slice of the priority distribution.
type Share struct {
	Priority model.Priority `json:"priority"`
	Count    int            `json:"count"`
	Percent  float64        `json:"percent"`
}

// PriorityView is the task priority dashboard.
type PriorityView struct {
	Meta         Meta                `json:"meta"`
	Distribution []Share             `json:"distribution"`
	Oldest       *model.Task         `json:"oldest,omitempty"`
	ByOfficer    aggregate.Breakdown `json:"by_officer"`
	ByDepartment aggregate.Breakdown `json:"by_department"`
}

func metaOf(s model.Snapshot) Meta {
	return Meta{
		Snapshot:  s.ID,
		Source:    s.Source,
		LoadedAt:  s.LoadedAt,
		Reference: s.Reference,
		Columns:   s.Columns,
		Mapping:   s.Mapping,
		Advisory:  s.Advisories,
	}
}

// Summarize builds the overview from the pending tasks of s.
func Summarize(s model.Snapshot, opts aggregate.Options) SummaryView {
	pending := aggregate.Pending(s.Tasks)
	return SummaryView{
		Meta:         metaOf(s),
		Summary:      opts.Summarize(s.Tasks, s.Reference),
		ByOfficer:    aggregate.Sorted(opts.CountByOfficer(pending)),
		ByDepartment: aggregate.Sorted(aggregate.CountByDepartment(pending)),
		Officers:     opts.OfficerSummary(pending),
		AverageDays:  opts.AverageDaysPendingByOfficer(pending),
	}
}

// Prioritize builds the priority dashboard from the pending tasks of s.
func Prioritize(s model.Snapshot, opts aggregate.Options) PriorityView {
	pending := aggregate.Pending(s.Tasks)
	return PriorityView{
		Meta:         metaOf(s),
		Distribution: Distribution(aggregate.CountByPriority(pending)),
		Oldest:       aggregate.OldestPending(pending),
		ByOfficer:    opts.PriorityByOfficer(pending),
		ByDepartment: aggregate.PriorityByDepartment(pending),
	}
}

// Distribution turns priority counts into shares in bucket order,
// percentages rounded to one decimal.
func Distribution(counts map[model.Priority]int) []Share {
	total := 0
	for _, n := range counts {
		total += n
	}
	shares := []Share{}
	for _, c := range aggregate.SortedPriorities(counts) {
		shares = append(shares, Share{
			Priority: model.Priority(c.Key),
			Count:    c.Count,
			Percent:  math.Round(float64(c.Count)*1000/float64(total)) / 10,
		})
	}
	return shares
}
