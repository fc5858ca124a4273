package normalize

import (
	"math"
	"strconv"
	"time"
)

var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
}

var monthFirstLayouts = []string{
	"1/2/2006", "1-2-2006", "1.2.2006",
	"1/2/2006 15:04:05", "1/2/2006 15:04",
	"1/2/06",
}

var dayFirstLayouts = []string{
	"2/1/2006", "2-1-2006", "2.1.2006",
	"2/1/2006 15:04:05", "2/1/2006 15:04",
	"2/1/06",
}

var textLayouts = []string{
	"2 Jan 2006", "2-Jan-2006", "2-Jan-06", "2 January 2006",
	"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
	"Monday, January 2, 2006", "Mon, 2 Jan 2006",
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// DateParser turns sheet date text into calendar dates.
type DateParser struct {
	// DayFirst prefers dd/mm/yyyy for ambiguous numeric dates.
	DayFirst bool
	// Location the dates are interpreted in; nil means time.Local.
	Location *time.Location
}

// Parse returns the calendar date (midnight in the parser's location)
// written in s. Unparseable or blank input reports ok=false.
func (p DateParser) Parse(s string) (t time.Time, ok bool) {
	s = CleanText(s)
	if s == "" {
		return time.Time{}, false
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	numeric := monthFirstLayouts
	fallback := dayFirstLayouts
	if p.DayFirst {
		numeric, fallback = fallback, numeric
	}

	for _, group := range [][]string{isoLayouts, numeric, fallback, textLayouts} {
		for _, layout := range group {
			if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
				return dateOf(parsed, loc), true
			}
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 20000 && serial <= 80000 {
		d := sheetsEpoch.AddDate(0, 0, int(math.Floor(serial)))
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

// dateOf keeps the calendar date as written, even for timestamps that
// carry their own offset.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

const secondsPerDay = 24 * 60 * 60

// DaysPending is the number of whole calendar days from the assigned date
// to the date of ref. Assigned dates after ref clamp to 0.
func DaysPending(ref, assigned time.Time) int {
	ry, rm, rd := ref.Date()
	ay, am, ad := assigned.Date()
	r := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	a := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	days := int((r.Unix() - a.Unix()) / secondsPerDay)
	if days < 0 {
		return 0
	}
	return days
}
