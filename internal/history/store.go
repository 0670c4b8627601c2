package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/offlingo/offlingo/internal"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS translations (
	id          TEXT PRIMARY KEY,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	source_text TEXT NOT NULL,
	result_text TEXT NOT NULL,
	from_cache  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_translations_created_at
	ON translations (created_at DESC);
`

// Entry is one stored translation.
type Entry struct {
	ID         string
	SourceLang string
	TargetLang string
	SourceText string
	ResultText string
	FromCache  bool
	CreatedAt  time.Time
}

// Store wraps the sqlite history database.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed and
// applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save records a finished translation and returns its generated ID.
func (s *Store) Save(entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = internal.GenerateEntryID(entry.SourceText)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO translations (id, source_lang, target_lang, source_text, result_text, from_cache, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SourceLang, entry.TargetLang,
		entry.SourceText, entry.ResultText, entry.FromCache, entry.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("saving history entry: %w", err)
	}
	return entry.ID, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, source_lang, target_lang, source_text, result_text, from_cache, created_at
		 FROM translations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SourceLang, &e.TargetLang,
			&e.SourceText, &e.ResultText, &e.FromCache, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
