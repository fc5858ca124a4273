package normalize

import (
	"strings"
	"unicode"

	"github.com/harrisonrobin/tasksheet/pkg/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// placeholders are cell values that mean "nothing here". Exports from
// dataframes write nan/None for empty cells.
var placeholders = map[string]bool{
	"nan": true, "none": true, "null": true, "nil": true,
	"n/a": true, "na": true, "-": true, "--": true,
}

// CleanText collapses whitespace runs to single spaces and trims. Blank
// and placeholder values come back as "".
func CleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if placeholders[strings.ToLower(s)] {
		return ""
	}
	return s
}

// Title cleans s and title-cases it so "john  smith" and "John Smith" land
// in the same bucket.
func Title(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}

// ClassifyPriority buckets free-text priority. The tests run in a fixed
// order: "urgent" is checked before "high", so "Most Urgent / High" is
// MostUrgent.
func ClassifyPriority(raw string) model.Priority {
	s := strings.ToLower(CleanText(raw))
	switch {
	case s == "":
		return model.Unspecified
	case strings.Contains(s, "urgent"):
		return model.MostUrgent
	case strings.Contains(s, "high"):
		return model.High
	case strings.Contains(s, "medium"), strings.Contains(s, "med"):
		return model.Medium
	case strings.Contains(s, "low"):
		return model.Low
	default:
		return model.Unspecified
	}
}

var completionWords = map[string]bool{
	"complete": true, "completed": true, "closed": true, "disposed": true,
	"resolved": true, "done": true, "finished": true,
}

// negators cancel the completion word they lead up to:
// "not done", "partially completed", "yet to be closed".
var negators = map[string]bool{
	"not": true, "no": true, "non": true, "yet": true, "un": true,
	"partially": true, "partly": true,
}

// fillers may sit between a negator and the completion word it cancels.
var fillers = map[string]bool{
	"to": true, "be": true, "been": true, "being": true, "fully": true,
}

// ClassifyStatus maps free-text status to Completed, Pending or Unknown.
// Only blank (or literally "unknown") is Unknown. A status is Completed
// when it holds a completion word that no negator leads up to.
func ClassifyStatus(raw string) model.Status {
	s := strings.ToLower(CleanText(raw))
	if s == "" || s == "unknown" {
		return model.Unknown
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	for i, w := range words {
		if completionWords[w] && !negated(words[:i]) {
			return model.Completed
		}
	}
	return model.Pending
}

// negated reports whether the words before a completion word end in a
// negator, skipping fillers.
func negated(before []string) bool {
	for i := len(before) - 1; i >= 0; i-- {
		if negators[before[i]] {
			return true
		}
		if !fillers[before[i]] {
			return false
		}
	}
	return false
}
