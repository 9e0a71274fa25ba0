// ABOUTME: Connection resolver that locates the CRM document inside its folder
// ABOUTME: Produces a per-operation handle with the tab map captured at connect time
package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/leadsheet/workbook"
)

var (
	// ErrNotConfigured means credentials or the folder id are missing.
	ErrNotConfigured = errors.New("crm backend not configured")
	// ErrNotFound means a document, tab, row or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a required argument is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUnrecognizedSchema means the lead header matches no known layout.
	ErrUnrecognizedSchema = errors.New("unrecognized lead table header")
	// ErrRemoteCallFailed matches every backend failure.
	ErrRemoteCallFailed = workbook.ErrRemote
)

// Settings identify the CRM document.
type Settings struct {
	DocumentName string
	FolderID     string
}

// Resolver finds the CRM document. It keeps no state between calls.
type Resolver struct {
	drive    workbook.Drive
	settings Settings
}

func NewResolver(drive workbook.Drive, settings Settings) *Resolver {
	if settings.DocumentName == "" {
		settings.DocumentName = DefaultDocumentName
	}
	return &Resolver{drive: drive, settings: settings}
}

// Conn is valid for one logical operation. Tabs created after it was
// resolved are not visible through it.
type Conn struct {
	Workbook   workbook.Workbook
	DocumentID string
	Schema     SchemaVersion
	tabs       []workbook.Tab
}

func newConn(wb workbook.Workbook, tabs []workbook.Tab) (*Conn, error) {
	if len(tabs) == 0 {
		return nil, fmt.Errorf("document %s has no tabs: %w", wb.ID(), ErrNotFound)
	}
	return &Conn{Workbook: wb, DocumentID: wb.ID(), tabs: tabs}, nil
}

// Tab looks up a tab by title.
func (c *Conn) Tab(title string) (workbook.Tab, bool) {
	for _, t := range c.tabs {
		if t.Title == title {
			return t, true
		}
	}
	return workbook.Tab{}, false
}

// RequireTab is Tab with an ErrNotFound error.
func (c *Conn) RequireTab(title string) (workbook.Tab, error) {
	t, ok := c.Tab(title)
	if !ok {
		return workbook.Tab{}, fmt.Errorf("tab %q: %w", title, ErrNotFound)
	}
	return t, nil
}

// LeadTab is the first tab of the document.
func (c *Conn) LeadTab() workbook.Tab {
	return c.tabs[0]
}

// Tabs returns the tabs captured at connect time.
func (c *Conn) Tabs() []workbook.Tab {
	return append([]workbook.Tab(nil), c.tabs...)
}

// Layout returns the lead column layout for the connection's schema.
func (c *Conn) Layout() (Layout, error) {
	l, ok := LayoutFor(c.Schema)
	if !ok {
		return Layout{}, fmt.Errorf("lead table is %s: %w", c.Schema, ErrUnrecognizedSchema)
	}
	return l, nil
}

func (c *Conn) addTab(t workbook.Tab) {
	if _, ok := c.Tab(t.Title); !ok {
		c.tabs = append(c.tabs, t)
	}
}

func (r *Resolver) configured() error {
	if r.drive == nil || r.settings.FolderID == "" {
		return ErrNotConfigured
	}
	return nil
}

// Resolve locates the existing CRM document. It issues exactly one search
// and one tab listing.
func (r *Resolver) Resolve(ctx context.Context) (*Conn, error) {
	if err := r.configured(); err != nil {
		return nil, err
	}
	id, err := r.search(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("document %q in folder %s: %w", r.settings.DocumentName, r.settings.FolderID, ErrNotFound)
	}
	return r.open(ctx, id)
}

// ResolveOrCreate locates the CRM document, creating it in the folder
// when it does not exist yet. The bool reports whether it was created.
func (r *Resolver) ResolveOrCreate(ctx context.Context) (*Conn, bool, error) {
	if err := r.configured(); err != nil {
		return nil, false, err
	}
	id, err := r.search(ctx)
	if err != nil {
		return nil, false, err
	}
	if id != "" {
		conn, err := r.open(ctx, id)
		return conn, false, err
	}

	id, err = r.drive.Create(ctx, r.settings.DocumentName, TabLeads)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create document: %w", err)
	}
	if err := r.drive.Move(ctx, id, r.settings.FolderID); err != nil {
		return nil, false, fmt.Errorf("failed to move document into folder: %w", err)
	}
	conn, err := r.open(ctx, id)
	return conn, true, err
}

func (r *Resolver) search(ctx context.Context) (string, error) {
	ids, err := r.drive.Search(ctx, r.settings.DocumentName, r.settings.FolderID)
	if err != nil {
		return "", fmt.Errorf("failed to search for document: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func (r *Resolver) open(ctx context.Context, id string) (*Conn, error) {
	wb := r.drive.Open(id)
	tabs, err := wb.Tabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	return newConn(wb, tabs)
}
