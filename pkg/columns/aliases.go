package columns

import (
	"os"
	"strings"
	"unicode"

	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Field is a canonical task attribute.
type Field string

const (
	ID           Field = "id"
	Subject      Field = "subject"
	Department   Field = "department"
	Officer      Field = "officer"
	Priority     Field = "priority"
	Status       Field = "status"
	AssignedDate Field = "assignedDate"
	DueDate      Field = "dueDate"
	FileLink     Field = "fileLink"
)

// Fields lists every canonical field in display order.
var Fields = []Field{ID, Subject, Department, Officer, Priority, Status, AssignedDate, DueDate, FileLink}

// Expected are the fields whose absence is reported as a schema mismatch.
// The others are optional in every known sheet layout.
var Expected = []Field{Department, Officer, Priority, Status, AssignedDate}

// AliasTable maps a canonical field to the header spellings that mean it.
type AliasTable map[Field][]string

// DefaultAliases covers the header spellings seen across the task sheets.
var DefaultAliases = AliasTable{
	ID:           {"task id", "id", "s no", "sr no", "serial no", "sl no"},
	Subject:      {"subject", "task name", "task", "description", "title"},
	Department:   {"dealing branch", "department", "branch", "dept"},
	Officer:      {"assign to", "assigned to", "marked to officer", "marked to", "officer", "assignee"},
	Priority:     {"priority", "priority level"},
	Status:       {"status", "task status", "case status"},
	AssignedDate: {"entry date", "start date", "pending since", "assigned date", "date"},
	DueDate:      {"due date", "deadline", "target date"},
	FileLink:     {"file", "open file", "file link", "link"},
}

// Key folds a header to its comparison form: lower case, letters and
// digits only. "Assign To", " assign_to " and "ASSIGNTO" share a key.
func Key(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Merge returns a copy of t with the aliases of other appended per field.
// An alias other gives to one field is taken away from every other field
// of t, so overrides win.
func (t AliasTable) Merge(other AliasTable) AliasTable {
	claimed := make(map[string]Field)
	for _, f := range Fields {
		for _, alias := range other[f] {
			if _, ok := claimed[Key(alias)]; !ok {
				claimed[Key(alias)] = f
			}
		}
	}

	out := make(AliasTable, len(t))
	for f, aliases := range t {
		kept := make([]string, 0, len(aliases))
		for _, alias := range aliases {
			if g, ok := claimed[Key(alias)]; ok && g != f {
				continue
			}
			kept = append(kept, alias)
		}
		out[f] = kept
	}
	for f, aliases := range other {
		out[f] = append(out[f], aliases...)
	}
	return out
}

// LoadAliases reads extra aliases from a YAML file shaped like:
//
//	officer: ["handled by", "owner"]
//	department: ["section"]
func LoadAliases(path string) (AliasTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read alias file %s", path)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse alias file %s", path)
	}

	known := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		known[Key(string(f))] = f
	}

	table := make(AliasTable, len(raw))
	owner := make(map[string]Field)
	for name, aliases := range raw {
		f, ok := known[Key(name)]
		if !ok {
			return nil, errors.WithHintf(
				errors.Newf("alias file %s: unknown field %q", path, name),
				"valid fields: %s", fieldList())
		}
		for _, alias := range aliases {
			k := Key(alias)
			if g, ok := known[k]; ok && g != f {
				return nil, errors.Newf("alias file %s: %q is the name of field %s", path, alias, g)
			}
			if g, ok := owner[k]; ok && g != f {
				return nil, errors.Newf("alias file %s: %q is listed under both %s and %s", path, alias, g, f)
			}
			owner[k] = f
		}
		table[f] = append(table[f], aliases...)
	}
	return table, nil
}

func fieldList() string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
