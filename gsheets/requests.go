// ABOUTME: Converts structural workbook ops into Sheets API requests
// ABOUTME: Zero-valued indexes are force-sent since the API omits them otherwise
package gsheets

import (
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/harperreed/leadsheet/workbook"
)

func gridRange(r workbook.GridRange) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          r.TabID,
		StartRowIndex:    int64(r.StartRow),
		EndRowIndex:      int64(r.EndRow),
		StartColumnIndex: int64(r.StartCol),
		EndColumnIndex:   int64(r.EndCol),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

func dimensionRange(tabID int64, dim workbook.Dimension, start, end int) *sheets.DimensionRange {
	return &sheets.DimensionRange{
		SheetId:         tabID,
		Dimension:       string(dim),
		StartIndex:      int64(start),
		EndIndex:        int64(end),
		ForceSendFields: []string{"SheetId", "StartIndex"},
	}
}

func color(c *workbook.Color) *sheets.Color {
	if c == nil {
		return nil
	}
	return &sheets.Color{
		Red:             c.Red,
		Green:           c.Green,
		Blue:            c.Blue,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}
}

// cellFormat converts a format and returns the field mask naming only the
// attributes that were set.
func cellFormat(f workbook.CellFormat) (*sheets.CellFormat, string) {
	out := &sheets.CellFormat{}
	var fields []string
	var text *sheets.TextFormat
	textFormat := func() *sheets.TextFormat {
		if text == nil {
			text = &sheets.TextFormat{}
			out.TextFormat = text
		}
		return text
	}

	if f.Background != nil {
		out.BackgroundColor = color(f.Background)
		fields = append(fields, "backgroundColor")
	}
	if f.TextColor != nil {
		textFormat().ForegroundColor = color(f.TextColor)
		fields = append(fields, "textFormat.foregroundColor")
	}
	if f.Bold {
		textFormat().Bold = true
		fields = append(fields, "textFormat.bold")
	}
	if f.FontSize > 0 {
		textFormat().FontSize = int64(f.FontSize)
		fields = append(fields, "textFormat.fontSize")
	}
	if f.HAlign != "" {
		out.HorizontalAlignment = f.HAlign
		fields = append(fields, "horizontalAlignment")
	}
	if f.VAlign != "" {
		out.VerticalAlignment = f.VAlign
		fields = append(fields, "verticalAlignment")
	}
	if f.NumberPattern != "" {
		out.NumberFormat = &sheets.NumberFormat{Type: "NUMBER", Pattern: f.NumberPattern}
		fields = append(fields, "numberFormat")
	}
	if f.Wrap {
		out.WrapStrategy = "WRAP"
		fields = append(fields, "wrapStrategy")
	}

	mask := "userEnteredFormat("
	for i, name := range fields {
		if i > 0 {
			mask += ","
		}
		mask += name
	}
	return out, mask + ")"
}

func toRequest(op workbook.Op) (*sheets.Request, error) {
	switch o := op.(type) {
	case workbook.InsertColumns:
		return &sheets.Request{InsertDimension: &sheets.InsertDimensionRequest{
			Range:             dimensionRange(o.TabID, workbook.Columns, o.Start, o.End),
			InheritFromBefore: o.InheritFromBefore,
		}}, nil

	case workbook.DeleteRows:
		return &sheets.Request{DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: dimensionRange(o.TabID, workbook.Rows, o.Start, o.End),
		}}, nil

	case workbook.AddTab:
		return &sheets.Request{AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: o.Title},
		}}, nil

	case workbook.MergeCells:
		return &sheets.Request{MergeCells: &sheets.MergeCellsRequest{
			Range:     gridRange(o.Range),
			MergeType: "MERGE_ALL",
		}}, nil

	case workbook.FormatCells:
		format, mask := cellFormat(o.Format)
		return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range:  gridRange(o.Range),
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: mask,
		}}, nil

	case workbook.ResizeDimension:
		return &sheets.Request{UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range:      dimensionRange(o.TabID, o.Dimension, o.Start, o.End),
			Properties: &sheets.DimensionProperties{PixelSize: int64(o.Pixels)},
			Fields:     "pixelSize",
		}}, nil

	case workbook.SetValidation:
		values := make([]*sheets.ConditionValue, len(o.Options))
		for i, v := range o.Options {
			values[i] = &sheets.ConditionValue{UserEnteredValue: v}
		}
		return &sheets.Request{SetDataValidation: &sheets.SetDataValidationRequest{
			Range: gridRange(o.Range),
			Rule: &sheets.DataValidationRule{
				Condition:    &sheets.BooleanCondition{Type: "ONE_OF_LIST", Values: values},
				ShowCustomUi: true,
			},
		}}, nil

	case workbook.AddConditionalFormat:
		cond := &sheets.BooleanCondition{
			Type:   "TEXT_EQ",
			Values: []*sheets.ConditionValue{{UserEnteredValue: o.Equals}},
		}
		if o.Formula != "" {
			cond = &sheets.BooleanCondition{
				Type:   "CUSTOM_FORMULA",
				Values: []*sheets.ConditionValue{{UserEnteredValue: o.Formula}},
			}
		}
		bg := o.Background
		format := &sheets.CellFormat{BackgroundColor: color(&bg)}
		if o.TextColor != nil {
			format.TextFormat = &sheets.TextFormat{ForegroundColor: color(o.TextColor)}
		}
		return &sheets.Request{AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
			Rule: &sheets.ConditionalFormatRule{
				Ranges:      []*sheets.GridRange{gridRange(o.Range)},
				BooleanRule: &sheets.BooleanRule{Condition: cond, Format: format},
			},
			Index:           0,
			ForceSendFields: []string{"Index"},
		}}, nil

	case workbook.FreezeRows:
		return &sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         o.TabID,
				GridProperties:  &sheets.GridProperties{FrozenRowCount: int64(o.Rows)},
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "gridProperties.frozenRowCount",
		}}, nil
	}
	return nil, fmt.Errorf("unsupported operation %T", op)
}
