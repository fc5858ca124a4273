package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrisonrobin/tasksheet/pkg/auth"
	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient reads cell values from Google Sheets.
type SheetsClient struct {
	srv *sheets.Service
}

// NewClient creates a Sheets client using the cached OAuth token.
func NewClient(ctx context.Context) (*SheetsClient, error) {
	client, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, errors.Wrap(err, "create Sheets service")
	}
	return NewSheetsClient(srv), nil
}

// NewSheetsClient wraps an existing service, e.g. one pointed at a test server.
func NewSheetsClient(srv *sheets.Service) *SheetsClient {
	return &SheetsClient{srv: srv}
}

// SheetTitle resolves a tab's title from its gid. A nil gid selects the
// first tab.
func (c *SheetsClient) SheetTitle(ctx context.Context, spreadsheetID string, gid *int64) (string, error) {
	ss, err := c.srv.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return "", explain(err, spreadsheetID)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		if gid == nil || sh.Properties.SheetId == *gid {
			return sh.Properties.Title, nil
		}
	}
	if gid == nil {
		return "", errors.Newf("spreadsheet %s has no sheets", spreadsheetID)
	}
	return "", errors.Wrapf(errors.ErrNotFound, "sheet gid %d in spreadsheet %s", *gid, spreadsheetID)
}

// ReadRange returns the formatted cell values of columns (e.g. "A:T") on
// the tab identified by gid. Every cell is rendered as text.
func (c *SheetsClient) ReadRange(ctx context.Context, spreadsheetID string, gid *int64, columns string) ([][]string, error) {
	title, err := c.SheetTitle(ctx, spreadsheetID, gid)
	if err != nil {
		return nil, err
	}

	vr, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, a1(title, columns)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, explain(err, spreadsheetID)
	}

	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

// a1 quotes a tab title for A1 notation.
func a1(title, columns string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + columns
}

// explain adds hints for the API failures users actually hit.
func explain(err error, spreadsheetID string) error {
	wrapped := errors.Wrapf(err, "spreadsheet %s", spreadsheetID)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 403:
			return errors.WithHint(wrapped, "the signed-in account cannot read this sheet; share it or run `tasksheet auth` with another account")
		case 404:
			return errors.WithHint(errors.Mark(wrapped, errors.ErrNotFound), "check the spreadsheet id in the URL")
		}
	}
	return wrapped
}
