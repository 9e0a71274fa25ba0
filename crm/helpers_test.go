// ABOUTME: Shared fixtures for crm tests
// ABOUTME: Builds an in-memory backend, a fixed clock and seeded CRM documents
package crm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/workbook"
)

const testFolder = "folder-crm"

var testNow = time.Date(2025, 3, 7, 9, 5, 0, 0, time.UTC)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestService(mem *workbook.Memory) *Service {
	resolver := NewResolver(mem, Settings{FolderID: testFolder})
	return NewService(resolver,
		WithClock(func() time.Time { return testNow }),
		WithLogger(quietLogger()))
}

// seedDoc creates a current-schema document with every tab and header in
// place, plus the given lead rows.
func seedDoc(t *testing.T, mem *workbook.Memory, leads ...[]string) string {
	t.Helper()
	doc := mem.AddDocument(DefaultDocumentName, testFolder, append([]string{TabLeads}, AuxTabs()...)...)
	mem.SetValues(doc, TabLeads, append([][]string{LeadHeaders()}, leads...))
	for _, aux := range auxTables {
		if len(aux.headers) > 0 {
			mem.SetValues(doc, aux.title, [][]string{aux.headers})
		}
	}
	return doc
}

// leadRow builds a full-width lead row.
func leadRow(company string, fields map[Field]string) []string {
	row := make([]string, fieldCount)
	row[FieldCompany] = company
	for f, v := range fields {
		row[f] = v
	}
	return row
}

func resolveConn(t *testing.T, mem *workbook.Memory) *Conn {
	t.Helper()
	conn, err := NewResolver(mem, Settings{FolderID: testFolder}).Resolve(context.Background())
	require.NoError(t, err)
	return conn
}

func methods(calls []workbook.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}
