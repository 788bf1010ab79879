package sleeper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
)

func TestPlayerFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players_nfl.json")
	file := NewPlayerFile(path, logging.NewNop())

	dir := trades.Directory{
		"123": map[string]any{"full_name": "Jane Doe", "position": "WR"},
	}
	if err := file.Store(dir); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	loaded, ok := file.Load()
	if !ok {
		t.Fatal("expected load to succeed")
	}
	record, ok := loaded["123"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected record shape: %v", loaded["123"])
	}
	if record["full_name"] != "Jane Doe" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestPlayerFile_MissingFileIsAbsence(t *testing.T) {
	file := NewPlayerFile(filepath.Join(t.TempDir(), "nope.json"), logging.NewNop())

	if _, ok := file.Load(); ok {
		t.Fatal("expected missing file to report absence")
	}
}

func TestPlayerFile_CorruptFileIsAbsence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players_nfl.json")
	if err := os.WriteFile(path, []byte("{definitely not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	file := NewPlayerFile(path, logging.NewNop())
	if _, ok := file.Load(); ok {
		t.Fatal("expected corrupt file to report absence")
	}
}

func TestPlayerFile_StoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache", "players_nfl.json")
	file := NewPlayerFile(path, logging.NewNop())

	if err := file.Store(trades.Directory{}); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestPlayerFile_StoreThenLoadReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players_nfl.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	file := NewPlayerFile(path, logging.NewNop())
	if err := file.Store(trades.Directory{"1": map[string]any{}}); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if _, ok := file.Load(); !ok {
		t.Fatal("expected load after rewrite to succeed")
	}
}
