// ABOUTME: Tests for row appends and partial cell updates
// ABOUTME: Unsupplied cells must survive every update untouched
package crm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/workbook"
)

func TestUpdateLeadWritesOnlySuppliedCells(t *testing.T) {
	mem := workbook.NewMemory()
	row := leadRow("Acme", map[Field]string{
		FieldCreated:     "25_01_10",
		FieldStatus:      "未アプローチ",
		FieldNextAction:  "電話する",
		FieldContactName: "山田",
	})
	doc := seedDoc(t, mem, row)
	wb := mem.Open(doc)
	s22, _ := LayoutFor(SchemaS22)
	mem.ResetCalls()

	err := UpdateLead(context.Background(), wb, TabLeads, s22, 2, map[Field]string{
		FieldScore: "72",
		FieldRank:  "B",
	})
	require.NoError(t, err)

	calls := mem.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "batch_update", calls[0].Method)
	assert.Equal(t, "'リスト'!I2,'リスト'!J2", calls[0].Range)

	got := mem.Values(doc, TabLeads)[1]
	want := append([]string(nil), row...)
	want[FieldScore] = "72"
	want[FieldRank] = "B"
	assert.Equal(t, workbook.TrimValues([][]string{want})[0], got)
}

func TestUpdateLeadRejectsColumnsOutsideLayout(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil))
	s8, _ := LayoutFor(SchemaS8)
	mem.ResetCalls()

	err := UpdateLead(context.Background(), mem.Open(doc), TabLeads, s8, 2, map[Field]string{FieldStage: "商談"})
	assert.ErrorIs(t, err, ErrUnrecognizedSchema)
	assert.Empty(t, mem.Calls())
}

func TestUpdateCellsRequiresFields(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem)
	err := UpdateCells(context.Background(), mem.Open(doc), TabLeads, 2, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppendRowReturnsRow(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil), leadRow("Beta", nil))

	row, err := AppendRow(context.Background(), mem.Open(doc), TabLeads, int(fieldCount), leadRow("Gamma", nil))
	require.NoError(t, err)
	assert.Equal(t, 4, row)
	assert.Equal(t, "Gamma", cell(mem.Values(doc, TabLeads)[3], int(FieldCompany)))
}
