// Package store holds the persistence-boundary consumers: a SQLite project
// archive and billy-filesystem import/export. Both sides speak plain
// filename -> text mappings; the core model is never aware of storage.
package store

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/agentic-research/formwork/api"
	_ "modernc.org/sqlite"
)

// SaveArchive writes the project files into a SQLite archive at dbPath,
// replacing any previous content. The write is a single transaction.
func SaveArchive(dbPath string, files map[string]string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		filename TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		content BLOB NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("clear archive: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO files (filename, kind, content) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	// Deterministic write order keeps archives byte-comparable.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kind := api.KindForFilename(name)
		if _, err := stmt.Exec(name, string(kind), []byte(files[name])); err != nil {
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LoadArchive reads a project archive back into file configs, sorted by
// filename, ready for Workspace.AddFiles.
func LoadArchive(dbPath string) ([]api.FileConfig, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT filename, kind, content FROM files ORDER BY filename")
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configs []api.FileConfig
	for rows.Next() {
		var name, kind string
		var content []byte
		if err := rows.Scan(&name, &kind, &content); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		configs = append(configs, api.FileConfig{
			Filename: name,
			Content:  string(content),
			Kind:     api.FileKind(kind),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return configs, nil
}
