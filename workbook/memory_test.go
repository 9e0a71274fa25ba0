// ABOUTME: Tests for the in-memory workbook backend
// ABOUTME: Verifies trimmed reads, appends, batch writes, structural ops and fault injection
package workbook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySearchScopesByFolder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := m.AddDocument("CRM", "folder-a")
	m.AddDocument("CRM", "folder-b")
	m.AddDocument("Other", "folder-a")

	ids, err := m.Search(ctx, "CRM", "folder-a")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	ids, err = m.Search(ctx, "CRM", "folder-c")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryCreateAndMove(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.Create(ctx, "CRM", "Leads")
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, m.Parents(id))

	require.NoError(t, m.Move(ctx, id, "folder"))
	assert.Equal(t, []string{"folder"}, m.Parents(id))

	tabs, err := m.Open(id).Tabs(ctx)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, "Leads", tabs[0].Title)
}

func TestMemoryGetTrimsLikeSheets(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := m.AddDocument("CRM", "f", "Leads")
	m.SetValues(id, "Leads", [][]string{
		{"date", "company", "url"},
		{"", "Acme", ""},
		{"", "", ""},
	})
	wb := m.Open(id)

	rows, err := wb.Get(ctx, "'Leads'!A:V")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"date", "company", "url"}, {"", "Acme"}}, rows)

	rows, err = wb.Get(ctx, "'Leads'!B:B")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"company"}, {"Acme"}}, rows)

	rows, err = wb.Get(ctx, "'Leads'!Z1:Z9")
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestMemoryAppendGoesPastLastRow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := m.AddDocument("CRM", "f", "Log")
	m.SetValues(id, "Log", [][]string{{"h1", "h2"}, {"a", "b"}, {}, {"c", "d"}})
	wb := m.Open(id)

	res, err := wb.Append(ctx, "'Log'!A:B", [][]string{{"e", "f"}})
	require.NoError(t, err)
	assert.Equal(t, 5, res.FirstRow)
	assert.Equal(t, "'Log'!A5:B5", res.UpdatedRange)

	rows, err := wb.Get(ctx, "'Log'!A5:B5")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"e", "f"}}, rows)
}

func TestMemoryBatchUpdateIsAllOrNothing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := m.AddDocument("CRM", "f", "Leads")
	wb := m.Open(id)

	err := wb.BatchUpdate(ctx, []ValueRange{
		{Range: "'Leads'!H2", Rows: [][]string{{"x"}}},
		{Range: "'Missing'!A1", Rows: [][]string{{"y"}}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.Nil(t, m.Values(id, "Leads"))
}

func TestMemoryApplyStructuralOps(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := m.AddDocument("CRM", "f", "Leads")
	m.SetValues(id, "Leads", [][]string{
		{"a", "b", "c"},
		{"1", "2", "3"},
		{"4", "5", "6"},
	})
	wb := m.Open(id)

	replies, err := wb.Apply(ctx,
		InsertColumns{TabID: 0, Start: 1, End: 2},
		DeleteRows{TabID: 0, Start: 1, End: 2},
		AddTab{Title: "Tasks"},
		FreezeRows{TabID: 0, Rows: 1},
	)
	require.NoError(t, err)
	require.Len(t, replies, 4)
	require.NotNil(t, replies[2].AddedTab)
	assert.Equal(t, "Tasks", replies[2].AddedTab.Title)

	assert.Equal(t, [][]string{{"a", "", "b", "c"}, {"4", "", "5", "6"}}, m.Values(id, "Leads"))
	assert.Len(t, m.Ops(id), 4)

	_, err = wb.Apply(ctx, AddTab{Title: "Tasks"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrRemote))
}

func TestMemoryFaultInjection(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := m.AddDocument("CRM", "f", "Leads")
	wb := m.Open(id)
	boom := errors.New("quota exceeded")
	m.FailWhen(func(c Call) error {
		if c.Method == "update" {
			return boom
		}
		return nil
	})

	err := wb.Update(ctx, "'Leads'!A1", [][]string{{"x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.True(t, errors.Is(err, boom))

	_, err = wb.Get(ctx, "'Leads'!A1")
	assert.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "update", calls[0].Method)
	assert.Equal(t, id, calls[0].Document)
}
