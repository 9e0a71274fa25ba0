// ABOUTME: Row locator that finds lead rows by fuzzy company name
// ABOUTME: Bidirectional substring match, last match wins, empty queries never read
package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/leadsheet/workbook"
)

// Match is a located row. Row is one-based and only valid for the current
// operation.
type Match struct {
	Row    int
	Values []string
}

// Company returns the company cell of the matched lead row.
func (m Match) Company() string {
	return cell(m.Values, int(FieldCompany))
}

// Matches reports whether a stored company name and a query refer to the
// same company: either contains the other. An empty query never matches.
func Matches(stored, query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(stored, query) || strings.Contains(query, stored)
}

// LastMatch scans data rows (rows[0] is the header) and returns the match
// with the greatest row index, comparing column col.
func LastMatch(rows [][]string, col int, query string) (Match, bool) {
	var last Match
	found := false
	for i := 1; i < len(rows); i++ {
		if Matches(cell(rows[i], col), query) {
			last = Match{Row: i + 1, Values: rows[i]}
			found = true
		}
	}
	return last, found
}

// AllMatches returns every matching data row in ascending row order.
func AllMatches(rows [][]string, col int, query string) []Match {
	var out []Match
	for i := 1; i < len(rows); i++ {
		if Matches(cell(rows[i], col), query) {
			out = append(out, Match{Row: i + 1, Values: rows[i]})
		}
	}
	return out
}

func leadRange(tab string) string {
	return workbook.ColumnSpan(tab, 0, int(fieldCount)-1)
}

// Find reads the lead table and returns the last row whose company matches.
func Find(ctx context.Context, wb workbook.Workbook, tab, company string) (Match, bool, error) {
	if company == "" {
		return Match{}, false, nil
	}
	rows, err := wb.Get(ctx, leadRange(tab))
	if err != nil {
		return Match{}, false, fmt.Errorf("failed to read lead table: %w", err)
	}
	m, ok := LastMatch(rows, int(FieldCompany), company)
	return m, ok, nil
}

// Locate is Find for primary operations: no match is ErrNotFound.
func Locate(ctx context.Context, wb workbook.Workbook, tab, company string) (Match, error) {
	if company == "" {
		return Match{}, fmt.Errorf("company name is required: %w", ErrValidation)
	}
	m, ok, err := Find(ctx, wb, tab, company)
	if err != nil {
		return Match{}, err
	}
	if !ok {
		return Match{}, fmt.Errorf("company %q: %w", company, ErrNotFound)
	}
	return m, nil
}

// FindAll returns every matching lead row from a fresh read.
func FindAll(ctx context.Context, wb workbook.Workbook, tab, company string) ([]Match, error) {
	if company == "" {
		return nil, nil
	}
	rows, err := wb.Get(ctx, leadRange(tab))
	if err != nil {
		return nil, fmt.Errorf("failed to read lead table: %w", err)
	}
	return AllMatches(rows, int(FieldCompany), company), nil
}

// FindFromBottom reads only the company column and walks it upward,
// stopping at the first match. Trailing rows with an empty company cell
// are trimmed by the read, so they never match here.
func FindFromBottom(ctx context.Context, wb workbook.Workbook, tab, company string) (int, bool, error) {
	if company == "" {
		return 0, false, nil
	}
	col := int(FieldCompany)
	rows, err := wb.Get(ctx, workbook.ColumnSpan(tab, col, col))
	if err != nil {
		return 0, false, fmt.Errorf("failed to read company column: %w", err)
	}
	for i := len(rows) - 1; i >= 1; i-- {
		if Matches(cell(rows[i], 0), company) {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}
