package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/doctran/doctran/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRequestAndResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	req := internal.TranslationRequest{
		ID:         "req-1",
		SourceFile: "scan.pdf",
		SourceText: "Hola\nMundo",
		SourceLang: "auto",
		TargetLang: "en",
		Timestamp:  time.Now(),
	}
	if err := s.SaveRequest(ctx, req); err != nil {
		t.Fatalf("SaveRequest: %v", err)
	}

	if err := s.SaveResult(ctx, "req-1", "chain", "Hello\nWorld", 2, 2, 0, 1500, ""); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT lines_translated FROM translation_results WHERE request_id = ?`, "req-1").Scan(&count)
	if err != nil {
		t.Fatalf("query result row: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 translated lines recorded, got %d", count)
	}
}

func TestSaveRequest_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	req := internal.TranslationRequest{ID: "dup", SourceText: "x", SourceLang: "es", TargetLang: "en", Timestamp: time.Now()}
	if err := s.SaveRequest(ctx, req); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.SaveRequest(ctx, req); err == nil {
		t.Error("expected error on duplicate request ID")
	}
}

func TestMemory_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hola mundo", "es", "en", "Hello world", "google"); err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	got, found, err := s.GetCachedTranslation(ctx, "Hola mundo", "es", "en")
	if err != nil {
		t.Fatalf("GetCachedTranslation: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestMemory_Miss(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.GetCachedTranslation(context.Background(), "never seen", "es", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected cache miss")
	}
}

func TestMemory_LanguagePairIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hola", "es", "en", "Hello", "google"); err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	// Same source text, different target language: must miss.
	_, found, err := s.GetCachedTranslation(ctx, "Hola", "es", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("cache hit across language pairs")
	}
}

func TestMemory_NormalizedLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Saved with surrounding whitespace, looked up without.
	if err := s.SaveToMemory(ctx, "  Hola mundo  ", "es", "en", "Hello world", "google"); err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	_, found, err := s.GetCachedTranslation(ctx, "Hola mundo", "es", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("expected hit after whitespace normalization")
	}
}

func TestMemory_UsageCountIncrements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hola", "es", "en", "Hello", "google"); err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := s.GetCachedTranslation(ctx, "Hola", "es", "en"); err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
	}

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].UsageCount != 4 {
		t.Errorf("expected usage count 4 (1 initial + 3 hits), got %d", entries[0].UsageCount)
	}
}

func TestMemory_InvalidatedEntrySkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hola", "es", "en", "Hello", "google"); err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory: %v", err)
	}
	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory: %v", err)
	}

	_, found, err := s.GetCachedTranslation(ctx, "Hola", "es", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("invalidated entry should not be served")
	}
}

func TestMemory_DeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "uno", "es", "en", "one", "google")
	s.SaveToMemory(ctx, "dos", "es", "en", "two", "google")
	s.SaveToMemory(ctx, "tres", "es", "en", "three", "google")

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "uno", "es", "en", "one", "google")
	s.SaveToMemory(ctx, "dos", "es", "en", "two", "google")

	entries, _ := s.ListMemory(ctx)
	s.InvalidateMemory(ctx, entries[0].ID)

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalEntries != 2 || stats.ActiveEntries != 1 || stats.InvalidEntries != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestFuzzyGet_NearMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "The quick brown fox jumps", "en", "de", "Der schnelle braune Fuchs springt", "google"); err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	// One OCR-style character error.
	got, found, err := s.FuzzyGetCachedTranslation(ctx, "The quick brown f0x jumps", "en", "de", 0.9)
	if err != nil {
		t.Fatalf("FuzzyGetCachedTranslation: %v", err)
	}
	if !found {
		t.Fatal("expected fuzzy hit for near-identical text")
	}
	if got != "Der schnelle braune Fuchs springt" {
		t.Errorf("unexpected translation: %q", got)
	}
}

func TestFuzzyGet_BelowThreshold(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "The quick brown fox jumps", "en", "de", "x", "google")

	_, found, err := s.FuzzyGetCachedTranslation(ctx, "Something else entirely", "en", "de", 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected miss for dissimilar text")
	}
}

func TestFuzzyGet_DisabledThreshold(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hola", "es", "en", "Hello", "google")

	_, found, err := s.FuzzyGetCachedTranslation(ctx, "Hola", "es", "en", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("threshold 0 should disable fuzzy lookup")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"привіт", "привет", 1},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStringSimilarity(t *testing.T) {
	if got := stringSimilarity("abc", "abc"); got != 1.0 {
		t.Errorf("identical strings: got %f", got)
	}
	if got := stringSimilarity("", ""); got != 1.0 {
		t.Errorf("empty strings: got %f", got)
	}
	if got := stringSimilarity("abcd", "abce"); got != 0.75 {
		t.Errorf("one-of-four substitution: got %f", got)
	}
}
