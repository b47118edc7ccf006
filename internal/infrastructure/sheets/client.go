package sheets

import (
	"context"
	"fmt"

	"github.com/unimate-backend/internal/config"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewService creates a Google Sheets API client authenticated with a service
// account credentials file.
func NewService(ctx context.Context, cfg *config.Config) *sheets.Service {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.SheetsCredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		panic("failed to create sheets client: " + err.Error())
	}
	return svc
}

// RangeValues pairs an A1-notation range with the cell matrix to write there.
type RangeValues struct {
	Range string
	Rows  [][]interface{}
}

// Tabular is the narrow surface the repos need from the spreadsheet service.
// Keeping it this small lets tests swap in an in-memory fake and would let a
// future indexed store replace the sheet without touching the services.
type Tabular interface {
	Read(ctx context.Context, rng string) ([][]interface{}, error)
	Update(ctx context.Context, rng string, rows [][]interface{}) error
	BatchUpdate(ctx context.Context, data []RangeValues) error
	Append(ctx context.Context, rng string, row []interface{}) error
	DeleteRow(ctx context.Context, tab string, row int64) error
}

// GoogleTabular implements Tabular against one spreadsheet. Sheet IDs for
// every tab are resolved once at construction and never mutated afterwards,
// so the value is safe to share across requests.
type GoogleTabular struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetIDs      map[string]int64 // tab title -> numeric sheet id
}

func NewGoogleTabular(ctx context.Context, svc *sheets.Service, spreadsheetID string) (*GoogleTabular, error) {
	meta, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet metadata: %w", err)
	}
	ids := make(map[string]int64, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return &GoogleTabular{svc: svc, spreadsheetID: spreadsheetID, sheetIDs: ids}, nil
}

func (g *GoogleTabular) Read(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *GoogleTabular) Update(ctx context.Context, rng string, rows [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *GoogleTabular) BatchUpdate(ctx context.Context, data []RangeValues) error {
	vrs := make([]*sheets.ValueRange, len(data))
	for i, d := range data {
		vrs[i] = &sheets.ValueRange{Range: d.Range, Values: d.Rows}
	}
	_, err := g.svc.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             vrs,
	}).Context(ctx).Do()
	return err
}

func (g *GoogleTabular) Append(ctx context.Context, rng string, row []interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// DeleteRow removes one row (1-based, as shown in the sheet UI) from a tab.
// Rows below shift up by one.
func (g *GoogleTabular) DeleteRow(ctx context.Context, tab string, row int64) error {
	sheetID, ok := g.sheetIDs[tab]
	if !ok {
		return fmt.Errorf("unknown tab %q", tab)
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: row - 1, // DeleteDimension is 0-based, end exclusive
					EndIndex:   row,
				},
			},
		}},
	}).Context(ctx).Do()
	return err
}
