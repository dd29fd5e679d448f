package tracking

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("document not found")

// Backend stores whole documents by name.
type Backend interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Close() error
}

const (
	BackendFile   = "json"
	BackendSQLite = "sqlite"
)

// OpenBackend opens the backend named by kind rooted at path. For the file
// backend path is a directory, for sqlite it is the database file.
func OpenBackend(kind, path string) (Backend, error) {
	switch kind {
	case "", BackendFile:
		return NewFileBackend(path)
	case BackendSQLite:
		return NewSQLiteBackend(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

// FileBackend keeps each document in <dir>/<name>.json.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write replaces the document through a temp file and rename.
func (b *FileBackend) Write(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), b.path(name))
}

func (b *FileBackend) Close() error {
	return nil
}

// SQLiteBackend keeps every document as one row of the documents table.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name       TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Read(name string) ([]byte, error) {
	var body string
	err := b.db.QueryRow(`SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Write(name string, data []byte) error {
	_, err := b.db.Exec(`INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(data))
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
