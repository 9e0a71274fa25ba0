// ABOUTME: Database schema for the local workbook store
// ABOUTME: Documents, their tabs, sparse cell values and the structural ops applied to them
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	parent TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_title_parent ON documents(title, parent);

CREATE TABLE IF NOT EXISTS tabs (
	document_id TEXT NOT NULL,
	tab_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (document_id, tab_id),
	UNIQUE (document_id, title),
	FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cells (
	document_id TEXT NOT NULL,
	tab_id INTEGER NOT NULL,
	row_num INTEGER NOT NULL,
	col_num INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (document_id, tab_id, row_num, col_num),
	FOREIGN KEY (document_id, tab_id) REFERENCES tabs(document_id, tab_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS formats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_formats_document ON formats(document_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
