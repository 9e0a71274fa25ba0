// ABOUTME: Tests for header classification and per-version layouts
// ABOUTME: Every header maps to exactly one schema version
package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func s7Header() []string {
	h := LeadHeaders()
	return append(h[:6:6], FieldStatus.Header())
}

func TestClassify(t *testing.T) {
	full := LeadHeaders()
	tests := []struct {
		name   string
		header []string
		want   SchemaVersion
	}{
		{"nil", nil, SchemaEmpty},
		{"blank cells", []string{"", "", ""}, SchemaEmpty},
		{"seven columns", s7Header(), SchemaS7},
		{"eight columns", full[:8], SchemaS8},
		{"fourteen columns", full[:14], SchemaS14},
		{"current", full, SchemaS22},
		{"current with trailing blanks", append(LeadHeaders(), "", ""), SchemaS22},
		{"extra column", append(LeadHeaders(), "メモ"), SchemaS22},
		{"extra columns after a gap", append(LeadHeaders(), "", "メモ"), SchemaS22},
		{"extra column on an old layout", append(append([]string{}, full[:14]...), "メモ"), SchemaUnrecognized},
		{"extra column with renamed label", append(append(append([]string{}, full[:21]...), "最終連絡"), "メモ"), SchemaUnrecognized},
		{"wrong label", append(append([]string{}, full[:7]...), "別名"), SchemaUnrecognized},
		{"odd width", full[:10], SchemaUnrecognized},
		{"foreign header", []string{"name", "email"}, SchemaUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.header))
		})
	}
}

func TestLayouts(t *testing.T) {
	s7, ok := LayoutFor(SchemaS7)
	assert.True(t, ok)
	col, ok := s7.Column(FieldStatus)
	assert.True(t, ok)
	assert.Equal(t, 6, col)
	_, ok = s7.Column(FieldOutreach)
	assert.False(t, ok)

	s22, ok := LayoutFor(SchemaS22)
	assert.True(t, ok)
	assert.Equal(t, 22, s22.Width())
	col, _ = s22.Column(FieldLastContact)
	assert.Equal(t, 21, col)

	_, ok = LayoutFor(SchemaEmpty)
	assert.False(t, ok)
	_, ok = LayoutFor(SchemaUnrecognized)
	assert.False(t, ok)
}

func TestLeadRoundTripThroughLayout(t *testing.T) {
	s14, _ := LayoutFor(SchemaS14)
	row := leadRow("Acme", map[Field]string{FieldRank: "B", FieldStage: "商談"})
	lead := DecodeLead(s14, 5, row)
	assert.Equal(t, 5, lead.Row)
	assert.Equal(t, "Acme", lead.Company)
	assert.Equal(t, "B", string(lead.Rank))
	// S14 has no pipeline column, so the stage cell is not read.
	assert.Empty(t, lead.Stage)
	assert.Len(t, EncodeLead(s14, lead), 14)
}
