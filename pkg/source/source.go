package source

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/google"
	"github.com/harrisonrobin/tasksheet/pkg/logger"
	"github.com/hashicorp/go-getter"
)

// Source yields a raw table. ID identifies the source for caching and is
// stable across loads.
type Source interface {
	ID() string
	Load(ctx context.Context) (*Table, error)
}

// CSVFile is an uploaded or local CSV file.
type CSVFile struct {
	Path string
}

func (s CSVFile) ID() string { return "file:" + s.Path }

func (s CSVFile) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Unreadable(err, "open csv file")
	}
	defer f.Close()
	return ParseCSV(f)
}

// CSVURL is a CSV document behind a URL, such as a published sheet export.
// It is fetched with go-getter, so s3:: and gcs:: URLs work as well.
type CSVURL struct {
	URL string

	// HTTPClient overrides the client used for http(s) URLs.
	HTTPClient *http.Client
}

func (s CSVURL) ID() string { return "url:" + s.URL }

func (s CSVURL) Load(ctx context.Context) (*Table, error) {
	dir, err := os.MkdirTemp("", "tasksheet-*")
	if err != nil {
		return nil, errors.Unreadable(err, "create download directory")
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, "sheet.csv")
	client := &getter.Client{
		Ctx:     ctx,
		Src:     s.URL,
		Dst:     dst,
		Mode:    getter.ClientModeFile,
		Getters: s.getters(),
	}

	logger.Logger.Infow("Fetching sheet", "url", s.URL)
	start := time.Now()
	if err := client.Get(); err != nil {
		return nil, errors.Unreadable(err, "fetch csv")
	}
	logger.Logger.Debugw("Fetched sheet", "url", s.URL, "elapsed", time.Since(start))

	f, err := os.Open(dst)
	if err != nil {
		return nil, errors.Unreadable(err, "open downloaded csv")
	}
	defer f.Close()
	return ParseCSV(f)
}

func (s CSVURL) getters() map[string]getter.Getter {
	httpGetter := &getter.HttpGetter{
		Netrc:                 true,
		Client:                s.HTTPClient,
		DoNotCheckHeadFirst:   true,
		ReadTimeout:           30 * time.Second,
		XTerraformGetDisabled: true,
	}
	return map[string]getter.Getter{
		"http":  httpGetter,
		"https": httpGetter,
		"s3":    new(getter.S3Getter),
		"gcs":   new(getter.GCSGetter),
	}
}

// RangeReader reads a column range from a Google Sheets tab.
type RangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID string, gid *int64, columns string) ([][]string, error)
}

// Sheet reads a Google Sheet through the Sheets API.
type Sheet struct {
	SpreadsheetID string
	GID           *int64
	Columns       string // A1 column range, e.g. "A:T"

	// Reader defaults to an authenticated google.SheetsClient.
	Reader RangeReader
}

func (s Sheet) ID() string {
	id := "sheet:" + s.SpreadsheetID
	if s.GID != nil {
		id += "#gid=" + strconv.FormatInt(*s.GID, 10)
	}
	return id
}

func (s Sheet) Load(ctx context.Context) (*Table, error) {
	reader := s.Reader
	if reader == nil {
		c, err := google.NewClient(ctx)
		if err != nil {
			return nil, errors.Unreadable(err, "connect to Google Sheets")
		}
		reader = c
	}
	cols := s.Columns
	if cols == "" {
		cols = "A:T"
	}

	rows, err := reader.ReadRange(ctx, s.SpreadsheetID, s.GID, cols)
	if err != nil {
		return nil, errors.Unreadable(err, "read sheet values")
	}
	return NewTable(rows)
}

// Options control how Detect maps an input string to a Source.
type Options struct {
	UseSheetsAPI bool
	Columns      string
	Reader       RangeReader
	HTTPClient   *http.Client
}

var sheetURL = regexp.MustCompile(`docs\.google\.com/spreadsheets/d/([A-Za-z0-9_-]+)`)
var gidParam = regexp.MustCompile(`[?#&]gid=(\d+)`)

// Detect picks a Source for input: Google Sheets URLs become Sheet (API
// mode) or their CSV export URL, other URLs become CSVURL and anything
// else is a file path.
func Detect(input string, opts Options) (Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.WithHint(errors.Wrap(errors.ErrInvalidSource, "empty source"),
			"pass a sheet URL or CSV path, or run `tasksheet config set-source`")
	}

	if id, gid, ok := ParseSheetURL(input); ok {
		if opts.UseSheetsAPI {
			return Sheet{SpreadsheetID: id, GID: gid, Columns: opts.Columns, Reader: opts.Reader}, nil
		}
		return CSVURL{URL: ExportURL(id, gid), HTTPClient: opts.HTTPClient}, nil
	}

	if strings.Contains(input, "://") || strings.Contains(input, "::") {
		if strings.HasPrefix(input, "file://") {
			u, err := url.Parse(input)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInvalidSource, "parse %q: %v", input, err)
			}
			return CSVFile{Path: u.Path}, nil
		}
		return CSVURL{URL: input, HTTPClient: opts.HTTPClient}, nil
	}

	path, err := filepath.Abs(input)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSource, "resolve %q: %v", input, err)
	}
	return CSVFile{Path: path}, nil
}

// ParseSheetURL extracts the spreadsheet id and optional tab gid from a
// Google Sheets URL.
func ParseSheetURL(input string) (id string, gid *int64, ok bool) {
	m := sheetURL.FindStringSubmatch(input)
	if m == nil {
		return "", nil, false
	}
	if g := gidParam.FindStringSubmatch(input); g != nil {
		if n, err := strconv.ParseInt(g[1], 10, 64); err == nil {
			gid = &n
		}
	}
	return m[1], gid, true
}

// ExportURL is the public CSV export of a spreadsheet tab.
func ExportURL(id string, gid *int64) string {
	u := "https://docs.google.com/spreadsheets/d/" + id + "/export?format=csv"
	if gid != nil {
		u += "&gid=" + strconv.FormatInt(*gid, 10)
	}
	return u
}
