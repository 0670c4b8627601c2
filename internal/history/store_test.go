package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/offlingo/offlingo/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Save(Entry{
		SourceLang: "en",
		TargetLang: "fr",
		SourceText: "hello",
		ResultText: "bonjour",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if id == "" {
		t.Fatal("Save() returned empty ID")
	}

	entries, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != id || got.SourceText != "hello" || got.ResultText != "bonjour" {
		t.Errorf("Recent()[0] = %+v", got)
	}
	if got.FromCache {
		t.Error("FromCache = true, want false")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		_, err := s.Save(Entry{
			SourceLang: "en",
			TargetLang: "fr",
			SourceText: text,
			ResultText: text,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Save(%q) error = %v", text, err)
		}
	}

	entries, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(entries))
	}
	if entries[0].SourceText != "third" || entries[1].SourceText != "second" {
		t.Errorf("Recent(2) order = [%s %s], want [third second]",
			entries[0].SourceText, entries[1].SourceText)
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Save(Entry{SourceLang: "en", TargetLang: "fr", SourceText: "x", ResultText: "y"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	entries, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Recent(0) returned %d entries, want 1", len(entries))
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Close()
	testutil.AssertFileExists(t, path)
}
