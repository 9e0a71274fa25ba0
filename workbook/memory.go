// ABOUTME: In-memory Drive/Workbook implementation for tests and dry runs
// ABOUTME: Records every call and supports fault injection per call
package workbook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Call describes one backend call observed by Memory.
type Call struct {
	Document string
	Method   string
	Range    string
	Ops      []Op
}

// Memory is a process-local backend. The zero value is not usable; call NewMemory.
type Memory struct {
	mu    sync.Mutex
	docs  map[string]*memDoc
	order []string
	calls []Call
	fail  func(Call) error
}

type memDoc struct {
	id      string
	title   string
	parents []string
	tabs    []*memTab
	nextTab int64
	ops     []Op
}

type memTab struct {
	Tab
	grid Grid
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*memDoc)}
}

// FailWhen installs a hook that can fail any call by returning a non-nil
// error. The error is wrapped as a remote failure.
func (m *Memory) FailWhen(fn func(Call) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// Calls returns a copy of the recorded calls.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// ResetCalls clears the call log.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// AddDocument seeds a document in a folder with the given tabs.
func (m *Memory) AddDocument(title, folderID string, tabs ...string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addDocument(title, []string{folderID}, tabs)
}

// SetValues overwrites a tab's contents starting at A1.
func (m *Memory) SetValues(documentID, tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tab(documentID, tab)
	if t == nil {
		return
	}
	t.grid = nil
	t.grid.Write(Range{Tab: tab, StartRow: 1, EndCol: -1}, rows)
}

// Values returns a tab's trimmed contents.
func (m *Memory) Values(documentID, tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tab(documentID, tab)
	if t == nil {
		return nil
	}
	return t.grid.Window(Range{Tab: tab, StartRow: 1, EndCol: -1})
}

// Ops returns the structural operations applied to a document.
func (m *Memory) Ops(documentID string) []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.docs[documentID]
	if doc == nil {
		return nil
	}
	out := make([]Op, len(doc.ops))
	copy(out, doc.ops)
	return out
}

// Parents returns the folders a document lives in.
func (m *Memory) Parents(documentID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc := m.docs[documentID]; doc != nil {
		return append([]string(nil), doc.parents...)
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, name, folderID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: "search", Range: name}); err != nil {
		return nil, err
	}
	var ids []string
	for _, id := range m.order {
		doc := m.docs[id]
		if doc.title != name {
			continue
		}
		for _, p := range doc.parents {
			if p == folderID {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (m *Memory) Create(ctx context.Context, title string, tabs ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: "create", Range: title}); err != nil {
		return "", err
	}
	return m.addDocument(title, []string{"root"}, tabs), nil
}

func (m *Memory) Move(ctx context.Context, documentID, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Document: documentID, Method: "move", Range: folderID}); err != nil {
		return err
	}
	doc := m.docs[documentID]
	if doc == nil {
		return Remote("move", fmt.Errorf("document %s not found", documentID))
	}
	doc.parents = []string{folderID}
	return nil
}

func (m *Memory) Open(documentID string) Workbook {
	return &memWorkbook{m: m, id: documentID}
}

func (m *Memory) addDocument(title string, parents []string, tabs []string) string {
	doc := &memDoc{id: uuid.New().String(), title: title, parents: parents}
	if len(tabs) == 0 {
		tabs = []string{"Sheet1"}
	}
	for _, t := range tabs {
		doc.addTab(t)
	}
	m.docs[doc.id] = doc
	m.order = append(m.order, doc.id)
	return doc.id
}

func (m *Memory) tab(documentID, title string) *memTab {
	doc := m.docs[documentID]
	if doc == nil {
		return nil
	}
	return doc.tab(title)
}

// record logs a call and runs the fault hook. Callers hold m.mu.
func (m *Memory) record(c Call) error {
	m.calls = append(m.calls, c)
	if m.fail == nil {
		return nil
	}
	if err := m.fail(c); err != nil {
		if errors.Is(err, ErrConflict) {
			return Conflict(c.Method, err)
		}
		return Remote(c.Method, err)
	}
	return nil
}

func (d *memDoc) addTab(title string) *memTab {
	t := &memTab{Tab: Tab{ID: d.nextTab, Title: title, Index: len(d.tabs)}}
	// Tab ids after the first are spread out the way real sheet ids are.
	d.nextTab += 1000 + int64(len(d.tabs))
	d.tabs = append(d.tabs, t)
	return t
}

func (d *memDoc) tab(title string) *memTab {
	for _, t := range d.tabs {
		if t.Title == title {
			return t
		}
	}
	return nil
}

func (d *memDoc) tabByID(id int64) *memTab {
	for _, t := range d.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

type memWorkbook struct {
	m  *Memory
	id string
}

func (w *memWorkbook) ID() string {
	return w.id
}

// begin locks the backend, records the call and resolves the document.
func (w *memWorkbook) begin(c Call) (*memDoc, error) {
	w.m.mu.Lock()
	c.Document = w.id
	if err := w.m.record(c); err != nil {
		return nil, err
	}
	doc := w.m.docs[w.id]
	if doc == nil {
		return nil, Remote(c.Method, fmt.Errorf("document %s not found", w.id))
	}
	return doc, nil
}

func (w *memWorkbook) resolve(doc *memDoc, method, rng string) (*memTab, Range, error) {
	r, err := ParseRange(rng)
	if err != nil {
		return nil, Range{}, Remote(method, err)
	}
	t := doc.tab(r.Tab)
	if t == nil {
		return nil, Range{}, Remote(method, fmt.Errorf("unable to parse range: %s", rng))
	}
	return t, r, nil
}

func (w *memWorkbook) Tabs(ctx context.Context) ([]Tab, error) {
	doc, err := w.begin(Call{Method: "tabs"})
	defer w.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	tabs := make([]Tab, len(doc.tabs))
	for i, t := range doc.tabs {
		tabs[i] = t.Tab
	}
	return tabs, nil
}

func (w *memWorkbook) Get(ctx context.Context, rng string) ([][]string, error) {
	doc, err := w.begin(Call{Method: "get", Range: rng})
	defer w.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t, r, err := w.resolve(doc, "get", rng)
	if err != nil {
		return nil, err
	}
	return t.grid.Window(r), nil
}

func (w *memWorkbook) Update(ctx context.Context, rng string, rows [][]string) error {
	doc, err := w.begin(Call{Method: "update", Range: rng})
	defer w.m.mu.Unlock()
	if err != nil {
		return err
	}
	t, r, err := w.resolve(doc, "update", rng)
	if err != nil {
		return err
	}
	t.grid.Write(r, rows)
	return nil
}

func (w *memWorkbook) Append(ctx context.Context, rng string, rows [][]string) (AppendResult, error) {
	doc, err := w.begin(Call{Method: "append", Range: rng})
	defer w.m.mu.Unlock()
	if err != nil {
		return AppendResult{}, err
	}
	t, r, err := w.resolve(doc, "append", rng)
	if err != nil {
		return AppendResult{}, err
	}
	first := t.grid.LastRow(r) + 1
	target := Range{Tab: r.Tab, StartCol: r.StartCol, EndCol: r.EndCol, StartRow: first}
	t.grid.Write(target, rows)
	width := 0
	for _, line := range rows {
		if len(line) > width {
			width = len(line)
		}
	}
	last := first + len(rows) - 1
	return AppendResult{
		UpdatedRange: Span(r.Tab, r.StartCol, first, r.StartCol+width-1, last),
		FirstRow:     first,
	}, nil
}

func (w *memWorkbook) BatchUpdate(ctx context.Context, data []ValueRange) error {
	doc, err := w.begin(Call{Method: "batch_update", Range: batchLabel(data)})
	defer w.m.mu.Unlock()
	if err != nil {
		return err
	}
	type write struct {
		t    *memTab
		r    Range
		rows [][]string
	}
	// Validate every range before touching the grid so a batch is all or nothing.
	writes := make([]write, 0, len(data))
	for _, vr := range data {
		t, r, err := w.resolve(doc, "batch_update", vr.Range)
		if err != nil {
			return err
		}
		writes = append(writes, write{t, r, vr.Rows})
	}
	for _, wr := range writes {
		wr.t.grid.Write(wr.r, wr.rows)
	}
	return nil
}

func (w *memWorkbook) Apply(ctx context.Context, ops ...Op) ([]Reply, error) {
	doc, err := w.begin(Call{Method: "apply", Ops: ops})
	defer w.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		switch o := op.(type) {
		case AddTab:
			if doc.tab(o.Title) != nil {
				return nil, Conflict("apply", fmt.Errorf("a sheet with the name %q already exists", o.Title))
			}
		case InsertColumns:
			if doc.tabByID(o.TabID) == nil {
				return nil, Remote("apply", fmt.Errorf("no grid with id %d", o.TabID))
			}
		case DeleteRows:
			if doc.tabByID(o.TabID) == nil {
				return nil, Remote("apply", fmt.Errorf("no grid with id %d", o.TabID))
			}
		}
	}

	replies := make([]Reply, len(ops))
	for i, op := range ops {
		switch o := op.(type) {
		case AddTab:
			t := doc.addTab(o.Title)
			tab := t.Tab
			replies[i] = Reply{AddedTab: &tab}
		case InsertColumns:
			doc.tabByID(o.TabID).grid.InsertColumns(o.Start, o.End-o.Start)
		case DeleteRows:
			doc.tabByID(o.TabID).grid.DeleteRows(o.Start, o.End)
		}
		doc.ops = append(doc.ops, op)
	}
	return replies, nil
}

func batchLabel(data []ValueRange) string {
	label := ""
	for i, vr := range data {
		if i > 0 {
			label += ","
		}
		label += vr.Range
	}
	return label
}
