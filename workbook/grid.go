// ABOUTME: In-memory cell grid used by the memory and SQLite backends
// ABOUTME: Mirrors spreadsheet read semantics: trailing empty cells and rows are trimmed
package workbook

// Grid holds cell values indexed as grid[row-1][col].
type Grid [][]string

// Set writes a single cell, growing the grid as needed.
func (g *Grid) Set(col, row int, value string) {
	for len(*g) < row {
		*g = append(*g, nil)
	}
	line := (*g)[row-1]
	for len(line) <= col {
		line = append(line, "")
	}
	line[col] = value
	(*g)[row-1] = line
}

// Value returns a cell or "" when it was never written.
func (g Grid) Value(col, row int) string {
	if row < 1 || row > len(g) || col < 0 || col >= len(g[row-1]) {
		return ""
	}
	return g[row-1][col]
}

// Write copies rows into the grid starting at the top-left of r.
func (g *Grid) Write(r Range, rows [][]string) {
	for i, line := range rows {
		for j, v := range line {
			g.Set(r.StartCol+j, r.StartRow+i, v)
		}
	}
}

// Window reads the values inside r the way a spreadsheet API returns them.
func (g Grid) Window(r Range) [][]string {
	lastRow := len(g)
	if r.EndRow > 0 && r.EndRow < lastRow {
		lastRow = r.EndRow
	}
	var out [][]string
	for row := r.StartRow; row <= lastRow; row++ {
		var line []string
		src := g[row-1]
		endCol := len(src) - 1
		if r.EndCol >= 0 && r.EndCol < endCol {
			endCol = r.EndCol
		}
		for col := r.StartCol; col <= endCol; col++ {
			line = append(line, src[col])
		}
		out = append(out, line)
	}
	return TrimValues(out)
}

// LastRow returns the one-based index of the last row holding a value in
// the columns of r, or 0 when there is none.
func (g Grid) LastRow(r Range) int {
	for row := len(g); row >= 1; row-- {
		for col, v := range g[row-1] {
			if v != "" && r.Contains(col, row) {
				return row
			}
		}
	}
	return 0
}

// InsertColumns shifts columns at and after start to the right by n.
func (g Grid) InsertColumns(start, n int) {
	for i, line := range g {
		if len(line) <= start {
			continue
		}
		shifted := make([]string, 0, len(line)+n)
		shifted = append(shifted, line[:start]...)
		shifted = append(shifted, make([]string, n)...)
		shifted = append(shifted, line[start:]...)
		g[i] = shifted
	}
}

// DeleteRows removes zero-based rows [start, end) and shifts the rest up.
func (g *Grid) DeleteRows(start, end int) {
	if start >= len(*g) {
		return
	}
	if end > len(*g) {
		end = len(*g)
	}
	*g = append((*g)[:start], (*g)[end:]...)
}

// TrimValues drops trailing empty cells of every row and trailing empty rows.
func TrimValues(rows [][]string) [][]string {
	for i, line := range rows {
		n := len(line)
		for n > 0 && line[n-1] == "" {
			n--
		}
		if n == 0 {
			rows[i] = []string{}
			continue
		}
		rows[i] = line[:n]
	}
	n := len(rows)
	for n > 0 && len(rows[n-1]) == 0 {
		n--
	}
	if n == 0 {
		return nil
	}
	return rows[:n]
}
