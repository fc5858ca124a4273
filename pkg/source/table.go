package source

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/harrisonrobin/tasksheet/pkg/errors"
)

// Table is a raw sheet: a header row and string cells, every row exactly as
// wide as the header.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewTable builds a Table from raw records. Leading blank rows are skipped,
// the first remaining row is the header, blank data rows are dropped and
// ragged rows are padded or cut to the header width.
func NewTable(records [][]string) (*Table, error) {
	start := 0
	for start < len(records) && blank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, errors.Mark(errors.New("no header row"), errors.ErrSourceUnreadable)
	}

	headers := trimTrailingEmpty(records[start])
	t := &Table{Headers: headers}
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(headers))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ParseCSV reads comma-separated text as exported by spreadsheet tools.
func ParseCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse csv"), errors.ErrSourceUnreadable)
	}
	return NewTable(records)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// trimTrailingEmpty drops unnamed trailing header cells, which sheet exports
// add for formatted but empty columns.
func trimTrailingEmpty(headers []string) []string {
	n := len(headers)
	for n > 0 && strings.TrimSpace(headers[n-1]) == "" {
		n--
	}
	return append([]string(nil), headers[:n]...)
}
