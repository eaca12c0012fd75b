package store

import (
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func createTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "webui.db")
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		t.Fatalf("unable to create test db: %v", err)
	}
	defer conn.Close()

	stmts := []string{
		`CREATE TABLE chat (id TEXT PRIMARY KEY, title TEXT)`,
		`CREATE TABLE file (id TEXT PRIMARY KEY, filename TEXT, path TEXT, data TEXT)`,
		`INSERT INTO chat (id, title) VALUES ('c1', 'Project kickoff')`,
		`INSERT INTO chat (id, title) VALUES ('c2', '')`,
		`INSERT INTO file (id, filename, path, data) VALUES ('f1', 'photo.png', '/app/backend/data/uploads/photo.png', NULL)`,
		`INSERT INTO file (id, filename, path, data) VALUES ('f2', 'chart.png', '', '{"b64": "aGVsbG8=", "url": "https://host/api/v1/files/f2/content"}')`,
		`INSERT INTO file (id, filename, path, data) VALUES ('f3', 'notes.txt', '', 'not json at all')`,
	}
	for _, s := range stmts {
		if err := sqlitex.ExecuteTransient(conn, s, nil); err != nil {
			t.Fatalf("unable to prepare test db: %v", err)
		}
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "no-such.db")); err == nil {
		t.Fatal("expected error opening nonexistent database")
	}
}

func TestChatTitle(t *testing.T) {
	s, err := Open(createTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	tests := []struct {
		id   string
		want string
	}{
		{"c1", "Project kickoff"},
		{"c2", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		got, err := s.ChatTitle(tt.id)
		if err != nil {
			t.Errorf("ChatTitle(%q) unexpected error: %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ChatTitle(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestFileByID(t *testing.T) {
	s, err := Open(createTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	t.Run("path only", func(t *testing.T) {
		rec, err := s.FileByID("f1")
		if err != nil {
			t.Fatal(err)
		}
		if rec == nil {
			t.Fatal("expected record for f1")
		}
		if rec.Name != "photo.png" || rec.Path != "/app/backend/data/uploads/photo.png" {
			t.Errorf("unexpected record: %+v", rec)
		}
		if rec.InlineB64 != "" || rec.URL != "" {
			t.Errorf("expected empty inline content and url, got %+v", rec)
		}
	})

	t.Run("inline data", func(t *testing.T) {
		rec, err := s.FileByID("f2")
		if err != nil {
			t.Fatal(err)
		}
		if rec == nil {
			t.Fatal("expected record for f2")
		}
		if rec.InlineB64 != "aGVsbG8=" {
			t.Errorf("InlineB64 = %q", rec.InlineB64)
		}
		if rec.URL != "https://host/api/v1/files/f2/content" {
			t.Errorf("URL = %q", rec.URL)
		}
	})

	t.Run("malformed data column", func(t *testing.T) {
		rec, err := s.FileByID("f3")
		if err != nil {
			t.Fatal(err)
		}
		if rec == nil {
			t.Fatal("expected record for f3")
		}
		if rec.InlineB64 != "" || rec.URL != "" {
			t.Errorf("malformed json must be ignored, got %+v", rec)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, err := s.FileByID("nope")
		if err != nil {
			t.Fatal(err)
		}
		if rec != nil {
			t.Fatalf("expected nil record, got %+v", rec)
		}
	})
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("nil store Close: %v", err)
	}
}
