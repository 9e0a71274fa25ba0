// ABOUTME: Local SQLite implementation of workbook.Workbook
// ABOUTME: Cells are stored sparsely; structural ops rewrite the affected tab in one transaction
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/leadsheet/workbook"
)

// Workbook is one locally stored document.
type Workbook struct {
	store *Store
	id    string
}

func (w *Workbook) ID() string {
	return w.id
}

func (w *Workbook) Tabs(ctx context.Context) ([]workbook.Tab, error) {
	var tabs []workbook.Tab
	err := w.store.inTx(ctx, "tabs", func(tx *sql.Tx) error {
		var err error
		tabs, err = w.listTabs(ctx, tx)
		return err
	})
	return tabs, err
}

func (w *Workbook) Get(ctx context.Context, rng string) ([][]string, error) {
	var out [][]string
	err := w.store.inTx(ctx, "get", func(tx *sql.Tx) error {
		tabID, r, err := w.resolve(ctx, tx, "get", rng)
		if err != nil {
			return err
		}
		grid, err := w.loadGrid(ctx, tx, tabID)
		if err != nil {
			return err
		}
		out = grid.Window(r)
		return nil
	})
	return out, err
}

func (w *Workbook) Update(ctx context.Context, rng string, rows [][]string) error {
	return w.store.inTx(ctx, "update", func(tx *sql.Tx) error {
		tabID, r, err := w.resolve(ctx, tx, "update", rng)
		if err != nil {
			return err
		}
		return w.writeCells(ctx, tx, tabID, r, rows)
	})
}

func (w *Workbook) Append(ctx context.Context, rng string, rows [][]string) (workbook.AppendResult, error) {
	var res workbook.AppendResult
	err := w.store.inTx(ctx, "append", func(tx *sql.Tx) error {
		tabID, r, err := w.resolve(ctx, tx, "append", rng)
		if err != nil {
			return err
		}
		grid, err := w.loadGrid(ctx, tx, tabID)
		if err != nil {
			return err
		}
		first := grid.LastRow(r) + 1
		target := workbook.Range{Tab: r.Tab, StartCol: r.StartCol, EndCol: r.EndCol, StartRow: first}
		if err := w.writeCells(ctx, tx, tabID, target, rows); err != nil {
			return err
		}
		width := 0
		for _, line := range rows {
			if len(line) > width {
				width = len(line)
			}
		}
		res = workbook.AppendResult{
			UpdatedRange: workbook.Span(r.Tab, r.StartCol, first, r.StartCol+width-1, first+len(rows)-1),
			FirstRow:     first,
		}
		return nil
	})
	return res, err
}

func (w *Workbook) BatchUpdate(ctx context.Context, data []workbook.ValueRange) error {
	return w.store.inTx(ctx, "batch_update", func(tx *sql.Tx) error {
		for _, vr := range data {
			tabID, r, err := w.resolve(ctx, tx, "batch_update", vr.Range)
			if err != nil {
				return err
			}
			if err := w.writeCells(ctx, tx, tabID, r, vr.Rows); err != nil {
				return err
			}
		}
		return nil
	})
}

// Apply runs every op in one transaction, so a failing op leaves the
// document untouched.
func (w *Workbook) Apply(ctx context.Context, ops ...workbook.Op) ([]workbook.Reply, error) {
	replies := make([]workbook.Reply, len(ops))
	err := w.store.inTx(ctx, "apply", func(tx *sql.Tx) error {
		if err := w.requireDocument(ctx, tx, "apply"); err != nil {
			return err
		}
		for i, op := range ops {
			reply, err := w.applyOp(ctx, tx, op)
			if err != nil {
				return err
			}
			replies[i] = reply
			payload, err := json.Marshal(op)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", workbook.OpName(op), err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO formats (document_id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
				w.id, workbook.OpName(op), string(payload), time.Now().UTC())
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (w *Workbook) applyOp(ctx context.Context, tx *sql.Tx, op workbook.Op) (workbook.Reply, error) {
	switch o := op.(type) {
	case workbook.AddTab:
		tab, err := addTab(ctx, tx, w.id, o.Title)
		if err != nil {
			return workbook.Reply{}, err
		}
		return workbook.Reply{AddedTab: &tab}, nil

	case workbook.InsertColumns:
		return workbook.Reply{}, w.rewrite(ctx, tx, o.TabID, func(g *workbook.Grid) {
			g.InsertColumns(o.Start, o.End-o.Start)
		})

	case workbook.DeleteRows:
		return workbook.Reply{}, w.rewrite(ctx, tx, o.TabID, func(g *workbook.Grid) {
			g.DeleteRows(o.Start, o.End)
		})
	}
	// Formatting ops only change presentation; they are recorded, not rendered.
	return workbook.Reply{}, nil
}

// rewrite loads a tab, mutates it and stores it back.
func (w *Workbook) rewrite(ctx context.Context, tx *sql.Tx, tabID int64, mutate func(*workbook.Grid)) error {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tabs WHERE document_id = ? AND tab_id = ?`, w.id, tabID).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return workbook.Remote("apply", fmt.Errorf("no grid with id %d", tabID))
	}
	grid, err := w.loadGrid(ctx, tx, tabID)
	if err != nil {
		return err
	}
	mutate(&grid)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cells WHERE document_id = ? AND tab_id = ?`, w.id, tabID); err != nil {
		return err
	}
	for i, line := range grid {
		for col, v := range line {
			if v == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cells (document_id, tab_id, row_num, col_num, value) VALUES (?, ?, ?, ?, ?)`,
				w.id, tabID, i+1, col, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workbook) requireDocument(ctx context.Context, tx *sql.Tx, call string) error {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE id = ?`, w.id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return workbook.Remote(call, fmt.Errorf("document %s not found", w.id))
	}
	return nil
}

func (w *Workbook) listTabs(ctx context.Context, tx *sql.Tx) ([]workbook.Tab, error) {
	if err := w.requireDocument(ctx, tx, "tabs"); err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT tab_id, title, position FROM tabs WHERE document_id = ? ORDER BY position`, w.id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tabs []workbook.Tab
	for rows.Next() {
		var t workbook.Tab
		if err := rows.Scan(&t.ID, &t.Title, &t.Index); err != nil {
			return nil, err
		}
		tabs = append(tabs, t)
	}
	return tabs, rows.Err()
}

// resolve parses an A1 range and looks up its tab id.
func (w *Workbook) resolve(ctx context.Context, tx *sql.Tx, call, rng string) (int64, workbook.Range, error) {
	r, err := workbook.ParseRange(rng)
	if err != nil {
		return 0, workbook.Range{}, workbook.Remote(call, err)
	}
	var tabID int64
	err = tx.QueryRowContext(ctx,
		`SELECT tab_id FROM tabs WHERE document_id = ? AND title = ?`, w.id, r.Tab).Scan(&tabID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, workbook.Range{}, workbook.Remote(call, fmt.Errorf("unable to parse range: %s", rng))
	}
	if err != nil {
		return 0, workbook.Range{}, err
	}
	return tabID, r, nil
}

func (w *Workbook) loadGrid(ctx context.Context, tx *sql.Tx, tabID int64) (workbook.Grid, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT row_num, col_num, value FROM cells WHERE document_id = ? AND tab_id = ?`, w.id, tabID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grid workbook.Grid
	for rows.Next() {
		var row, col int
		var value string
		if err := rows.Scan(&row, &col, &value); err != nil {
			return nil, err
		}
		grid.Set(col, row, value)
	}
	return grid, rows.Err()
}

// writeCells stores rows at the top-left of r. Empty strings clear cells.
func (w *Workbook) writeCells(ctx context.Context, tx *sql.Tx, tabID int64, r workbook.Range, rows [][]string) error {
	for i, line := range rows {
		for j, v := range line {
			row, col := r.StartRow+i, r.StartCol+j
			var err error
			if v == "" {
				_, err = tx.ExecContext(ctx,
					`DELETE FROM cells WHERE document_id = ? AND tab_id = ? AND row_num = ? AND col_num = ?`,
					w.id, tabID, row, col)
			} else {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO cells (document_id, tab_id, row_num, col_num, value) VALUES (?, ?, ?, ?, ?)
					 ON CONFLICT (document_id, tab_id, row_num, col_num) DO UPDATE SET value = excluded.value`,
					w.id, tabID, row, col, v)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Formats returns the kinds of structural ops recorded for the document,
// oldest first.
func (w *Workbook) Formats(ctx context.Context) ([]string, error) {
	rows, err := w.store.db.QueryContext(ctx,
		`SELECT kind FROM formats WHERE document_id = ? ORDER BY id`, w.id)
	if err != nil {
		return nil, workbook.Remote("formats", err)
	}
	defer rows.Close()
	var kinds []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, workbook.Remote("formats", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, rows.Err()
}
