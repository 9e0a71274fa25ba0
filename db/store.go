// ABOUTME: Local SQLite implementation of workbook.Drive
// ABOUTME: Used as the CRM backend when no Google credentials are configured
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/leadsheet/workbook"
)

// rootFolder is the parent of freshly created documents, like a Drive root.
const rootFolder = "root"

// Store keeps documents in a SQLite database.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// inTx runs fn in a transaction. Errors that are not already backend
// errors are wrapped as remote failures of call.
func (s *Store) inTx(ctx context.Context, call string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return workbook.Remote(call, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		var remote *workbook.RemoteError
		if errors.As(err, &remote) {
			return err
		}
		return workbook.Remote(call, err)
	}
	if err := tx.Commit(); err != nil {
		return workbook.Remote(call, err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, name, folderID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM documents WHERE title = ? AND parent = ? ORDER BY created_at, rowid`,
		name, folderID)
	if err != nil {
		return nil, workbook.Remote("search", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, workbook.Remote("search", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, workbook.Remote("search", err)
	}
	return ids, nil
}

func (s *Store) Create(ctx context.Context, title string, tabs ...string) (string, error) {
	if len(tabs) == 0 {
		tabs = []string{"Sheet1"}
	}
	id := uuid.New().String()
	err := s.inTx(ctx, "create", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, title, parent, created_at) VALUES (?, ?, ?, ?)`,
			id, title, rootFolder, time.Now().UTC())
		if err != nil {
			return err
		}
		for _, t := range tabs {
			if _, err := addTab(ctx, tx, id, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Move(ctx context.Context, documentID, folderID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET parent = ? WHERE id = ?`, folderID, documentID)
	if err != nil {
		return workbook.Remote("move", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return workbook.Remote("move", fmt.Errorf("document %s not found", documentID))
	}
	return nil
}

func (s *Store) Open(documentID string) workbook.Workbook {
	return &Workbook{store: s, id: documentID}
}

// addTab inserts a tab after the existing ones and returns it. The first
// tab of a document gets id 0.
func addTab(ctx context.Context, tx *sql.Tx, documentID, title string) (workbook.Tab, error) {
	var exists int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tabs WHERE document_id = ? AND title = ?`, documentID, title).Scan(&exists)
	if err != nil {
		return workbook.Tab{}, err
	}
	if exists > 0 {
		return workbook.Tab{}, workbook.Conflict("add_tab", fmt.Errorf("a sheet with the name %q already exists", title))
	}

	var nextID sql.NullInt64
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(tab_id) + 1, COUNT(*) FROM tabs WHERE document_id = ?`, documentID).Scan(&nextID, &count)
	if err != nil {
		return workbook.Tab{}, err
	}
	tab := workbook.Tab{ID: nextID.Int64, Title: title, Index: count}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tabs (document_id, tab_id, title, position) VALUES (?, ?, ?, ?)`,
		documentID, tab.ID, tab.Title, tab.Index)
	if err != nil {
		return workbook.Tab{}, err
	}
	return tab, nil
}
