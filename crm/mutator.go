// ABOUTME: Row mutator for appends and minimal-diff cell updates
// ABOUTME: Multi-field updates go out as one batched request with only supplied cells
package crm

import (
	"context"
	"fmt"
	"sort"

	"github.com/harperreed/leadsheet/workbook"
)

// AppendRow appends one row past the last used row of columns
// [0, width) and returns its one-based row number.
func AppendRow(ctx context.Context, wb workbook.Workbook, tab string, width int, row []string) (int, error) {
	res, err := wb.Append(ctx, workbook.ColumnSpan(tab, 0, width-1), [][]string{row})
	if err != nil {
		return 0, fmt.Errorf("failed to append row to %s: %w", tab, err)
	}
	return res.FirstRow, nil
}

// UpdateCells writes the given zero-based columns of one row in a single
// batch. Columns not present in cells are left untouched.
func UpdateCells(ctx context.Context, wb workbook.Workbook, tab string, row int, cells map[int]string) error {
	if len(cells) == 0 {
		return fmt.Errorf("no fields to update: %w", ErrValidation)
	}
	cols := make([]int, 0, len(cells))
	for col := range cells {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	data := make([]workbook.ValueRange, 0, len(cols))
	for _, col := range cols {
		data = append(data, workbook.ValueRange{
			Range: workbook.Cell(tab, col, row),
			Rows:  [][]string{{cells[col]}},
		})
	}
	if err := wb.BatchUpdate(ctx, data); err != nil {
		return fmt.Errorf("failed to update row %d of %s: %w", row, tab, err)
	}
	return nil
}

// UpdateLead writes the supplied lead fields of one row. Fields the layout
// does not have are rejected.
func UpdateLead(ctx context.Context, wb workbook.Workbook, tab string, layout Layout, row int, fields map[Field]string) error {
	cells := make(map[int]string, len(fields))
	for f, v := range fields {
		col, ok := layout.Column(f)
		if !ok {
			return fmt.Errorf("column %s missing in %s layout: %w", f.Header(), layout.Version, ErrUnrecognizedSchema)
		}
		cells[col] = v
	}
	return UpdateCells(ctx, wb, tab, row, cells)
}
