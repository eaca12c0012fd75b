// Package store reads chat and file records from the local transcript
// database. Access is read-only, the database belongs to the chat frontend.
package store

import (
	"encoding/json"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// FileRecord is the stored-file metadata relevant to embedding: where the
// bytes live and under what name.
type FileRecord struct {
	ID        string
	Name      string
	Path      string // disk path or object storage url
	URL       string // public download url when the backend exposes one
	InlineB64 string // base64 content stored directly in the record
}

type Store struct {
	conn *sqlite.Conn
}

// Open opens the database read-only.
func Open(path string) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("unable to open transcript store (%s): %w", path, err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// ChatTitle looks up the stored title of a chat. Empty result means the chat
// is unknown or untitled.
func (s *Store) ChatTitle(chatID string) (string, error) {
	var title string
	err := sqlitex.Execute(s.conn, `SELECT title FROM chat WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{chatID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				title = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("chat title lookup failed: %w", err)
	}
	return title, nil
}

// FileByID fetches a stored-file record. Returns nil without error when the
// id is unknown.
func (s *Store) FileByID(id string) (*FileRecord, error) {
	var rec *FileRecord
	var dataJSON string
	err := sqlitex.Execute(s.conn, `SELECT id, filename, path, data FROM file WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				rec = &FileRecord{
					ID:   stmt.ColumnText(0),
					Name: stmt.ColumnText(1),
					Path: stmt.ColumnText(2),
				}
				dataJSON = stmt.ColumnText(3)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("file lookup failed: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	if dataJSON != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(dataJSON), &data); err == nil {
			for _, key := range []string{"b64", "base64", "data"} {
				if v, ok := data[key].(string); ok && v != "" {
					rec.InlineB64 = v
					break
				}
			}
			if v, ok := data["url"].(string); ok {
				rec.URL = v
			}
		}
	}
	return rec, nil
}
