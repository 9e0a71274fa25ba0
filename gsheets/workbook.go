// ABOUTME: workbook.Workbook on the Sheets values and batchUpdate endpoints
// ABOUTME: All value writes use USER_ENTERED so formulas and numbers are parsed
package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/harperreed/leadsheet/workbook"
)

// Workbook is one spreadsheet document.
type Workbook struct {
	sheets *sheets.Service
	id     string
}

func (w *Workbook) ID() string {
	return w.id
}

func (w *Workbook) Tabs(ctx context.Context) ([]workbook.Tab, error) {
	doc, err := w.sheets.Spreadsheets.Get(w.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, wrap("tabs", err)
	}
	tabs := make([]workbook.Tab, 0, len(doc.Sheets))
	for _, s := range doc.Sheets {
		if s.Properties == nil {
			continue
		}
		tabs = append(tabs, workbook.Tab{
			ID:    s.Properties.SheetId,
			Title: s.Properties.Title,
			Index: int(s.Properties.Index),
		})
	}
	return tabs, nil
}

func (w *Workbook) Get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := w.sheets.Spreadsheets.Values.Get(w.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, wrap("get", err)
	}
	return toStrings(resp.Values), nil
}

func (w *Workbook) Update(ctx context.Context, rng string, rows [][]string) error {
	_, err := w.sheets.Spreadsheets.Values.Update(w.id, rng, &sheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption(workbook.ValueInput).
		Context(ctx).
		Do()
	return wrap("update", err)
}

func (w *Workbook) Append(ctx context.Context, rng string, rows [][]string) (workbook.AppendResult, error) {
	resp, err := w.sheets.Spreadsheets.Values.Append(w.id, rng, &sheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption(workbook.ValueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return workbook.AppendResult{}, wrap("append", err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return workbook.AppendResult{}, workbook.Remote("append", fmt.Errorf("append returned no updated range"))
	}
	r, err := workbook.ParseRange(resp.Updates.UpdatedRange)
	if err != nil {
		return workbook.AppendResult{}, workbook.Remote("append", err)
	}
	return workbook.AppendResult{UpdatedRange: resp.Updates.UpdatedRange, FirstRow: r.StartRow}, nil
}

func (w *Workbook) BatchUpdate(ctx context.Context, data []workbook.ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: workbook.ValueInput}
	for _, vr := range data {
		req.Data = append(req.Data, &sheets.ValueRange{Range: vr.Range, Values: toValues(vr.Rows)})
	}
	_, err := w.sheets.Spreadsheets.Values.BatchUpdate(w.id, req).Context(ctx).Do()
	return wrap("batch_update", err)
}

// Apply sends every op in one spreadsheet batchUpdate, which the API
// applies atomically.
func (w *Workbook) Apply(ctx context.Context, ops ...workbook.Op) ([]workbook.Reply, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	reqs := make([]*sheets.Request, 0, len(ops))
	for _, op := range ops {
		req, err := toRequest(op)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	resp, err := w.sheets.Spreadsheets.BatchUpdate(w.id, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("apply", err)
	}
	return toReplies(resp.Replies, len(ops)), nil
}

func toReplies(replies []*sheets.Response, n int) []workbook.Reply {
	out := make([]workbook.Reply, n)
	for i, r := range replies {
		if i >= n || r == nil || r.AddSheet == nil || r.AddSheet.Properties == nil {
			continue
		}
		p := r.AddSheet.Properties
		out[i] = workbook.Reply{AddedTab: &workbook.Tab{ID: p.SheetId, Title: p.Title, Index: int(p.Index)}}
	}
	return out
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, line := range rows {
		out[i] = make([]interface{}, len(line))
		for j, v := range line {
			out[i][j] = v
		}
	}
	return out
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, line := range values {
		out[i] = make([]string, len(line))
		for j, v := range line {
			if v != nil {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return workbook.TrimValues(out)
}
