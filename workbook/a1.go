// ABOUTME: A1 notation helpers for addressing cell ranges
// ABOUTME: Parses and builds ranges like 'Tab'!A1:V1, 'Tab'!B:B and 'Tab'!H5
package workbook

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 range. Columns are zero-based and inclusive, rows are
// one-based and inclusive. EndCol of -1 or EndRow of 0 means unbounded.
type Range struct {
	Tab      string
	StartCol int
	EndCol   int
	StartRow int
	EndRow   int
}

// ColumnLetter converts a zero-based column index into letters (0 -> A, 26 -> AA).
func ColumnLetter(col int) string {
	if col < 0 {
		return ""
	}
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// ColumnIndex converts column letters into a zero-based index. It returns -1
// for anything that is not a column reference.
func ColumnIndex(letters string) int {
	if letters == "" {
		return -1
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return -1
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1
}

// QuoteTab quotes a tab title for use in a range.
func QuoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// Cell returns the range of a single cell, e.g. 'Tab'!H5.
func Cell(tab string, col, row int) string {
	return fmt.Sprintf("%s!%s%d", QuoteTab(tab), ColumnLetter(col), row)
}

// Span returns a bounded range, e.g. 'Tab'!I5:N5.
func Span(tab string, startCol, startRow, endCol, endRow int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", QuoteTab(tab),
		ColumnLetter(startCol), startRow, ColumnLetter(endCol), endRow)
}

// ColumnSpan returns a whole-column range, e.g. 'Tab'!A:V.
func ColumnSpan(tab string, startCol, endCol int) string {
	return fmt.Sprintf("%s!%s:%s", QuoteTab(tab), ColumnLetter(startCol), ColumnLetter(endCol))
}

// ParseRange parses an A1 range with a tab prefix.
func ParseRange(s string) (Range, error) {
	sep := strings.LastIndex(s, "!")
	if sep < 0 {
		return Range{}, fmt.Errorf("range %q has no tab", s)
	}
	tab := s[:sep]
	if len(tab) >= 2 && tab[0] == '\'' && tab[len(tab)-1] == '\'' {
		tab = strings.ReplaceAll(tab[1:len(tab)-1], "''", "'")
	}
	if tab == "" {
		return Range{}, fmt.Errorf("range %q has an empty tab", s)
	}

	refs := strings.Split(s[sep+1:], ":")
	if len(refs) > 2 {
		return Range{}, fmt.Errorf("range %q is malformed", s)
	}

	startCol, startRow, err := parseRef(refs[0])
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	r := Range{Tab: tab, StartCol: startCol, EndCol: startCol, StartRow: startRow, EndRow: startRow}
	if startRow == 0 {
		r.StartRow = 1
	}

	if len(refs) == 2 {
		endCol, endRow, err := parseRef(refs[1])
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", s, err)
		}
		r.EndCol = endCol
		r.EndRow = endRow
	}
	if r.StartCol < 0 {
		r.StartCol = 0
	}
	return r, nil
}

// Contains reports whether the zero-based column and one-based row fall
// inside the range.
func (r Range) Contains(col, row int) bool {
	if col < r.StartCol || row < r.StartRow {
		return false
	}
	if r.EndCol >= 0 && col > r.EndCol {
		return false
	}
	if r.EndRow > 0 && row > r.EndRow {
		return false
	}
	return true
}

func (r Range) String() string {
	start := ColumnLetter(r.StartCol) + strconv.Itoa(r.StartRow)
	end := ColumnLetter(r.EndCol)
	if r.EndRow > 0 {
		end += strconv.Itoa(r.EndRow)
	}
	return QuoteTab(r.Tab) + "!" + start + ":" + end
}

// parseRef parses "H5", "H" or "5". A missing column yields -1, a missing
// row yields 0.
func parseRef(ref string) (int, int, error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty reference")
	}
	i := 0
	for i < len(ref) && ((ref[i] >= 'A' && ref[i] <= 'Z') || (ref[i] >= 'a' && ref[i] <= 'z')) {
		i++
	}
	col := ColumnIndex(ref[:i])
	row := 0
	if i < len(ref) {
		n, err := strconv.Atoi(ref[i:])
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid reference %q", ref)
		}
		row = n
	}
	return col, row, nil
}
