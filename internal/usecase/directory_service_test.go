package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/cache"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
)

type fakePlayerStore struct {
	data       trades.Directory
	storeErr   error
	loadCalls  int
	storeCalls int
	stored     trades.Directory
}

func (f *fakePlayerStore) Load() (trades.Directory, bool) {
	f.loadCalls++
	if f.data == nil {
		return nil, false
	}
	return f.data, true
}

func (f *fakePlayerStore) Store(dir trades.Directory) error {
	f.storeCalls++
	f.stored = dir
	return f.storeErr
}

func newTestDirectoryService(api PlatformAPI, file PlayerStore) *DirectoryService {
	return NewDirectoryService(api, file, cache.NewStore(time.Minute, 1), logging.NewNop())
}

func TestDirectory_PrefersDurableFile(t *testing.T) {
	api := &fakeAPI{players: trades.Directory{"net": map[string]any{}}}
	file := &fakePlayerStore{data: trades.Directory{"disk": map[string]any{}}}
	svc := newTestDirectoryService(api, file)

	dir := svc.Directory(context.Background())
	if _, ok := dir["disk"]; !ok {
		t.Fatalf("expected file-backed directory, got %v", dir)
	}
	if api.playersCalls.Load() != 0 {
		t.Fatal("network should not be hit when the file tier has data")
	}
}

func TestDirectory_FetchesAndPersistsOnFileMiss(t *testing.T) {
	api := &fakeAPI{players: trades.Directory{"123": map[string]any{"full_name": "Jane Doe"}}}
	file := &fakePlayerStore{}
	svc := newTestDirectoryService(api, file)

	dir := svc.Directory(context.Background())
	if _, ok := dir["123"]; !ok {
		t.Fatalf("expected fetched directory, got %v", dir)
	}
	if file.storeCalls != 1 {
		t.Fatalf("expected one persist, got %d", file.storeCalls)
	}
	if _, ok := file.stored["123"]; !ok {
		t.Fatal("persisted directory does not carry fetched data")
	}
}

func TestDirectory_PersistFailureIsNonFatal(t *testing.T) {
	api := &fakeAPI{players: trades.Directory{"123": map[string]any{}}}
	file := &fakePlayerStore{storeErr: errors.New("disk full")}
	svc := newTestDirectoryService(api, file)

	dir := svc.Directory(context.Background())
	if len(dir) != 1 {
		t.Fatalf("expected directory despite persist failure, got %v", dir)
	}
}

func TestDirectory_EmptyFetchIsCached(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestDirectoryService(api, &fakePlayerStore{})

	for i := 0; i < 3; i++ {
		dir := svc.Directory(context.Background())
		if dir == nil {
			t.Fatal("directory must never be nil")
		}
		if len(dir) != 0 {
			t.Fatalf("expected empty directory, got %v", dir)
		}
	}

	if got := api.playersCalls.Load(); got != 1 {
		t.Fatalf("players endpoint called %d times, want 1", got)
	}
}

func TestPlayerName_FullRecord(t *testing.T) {
	dir := trades.Directory{
		"123": map[string]any{"full_name": "Jane Doe", "position": "WR", "team": "BUF"},
	}
	if got := PlayerName(dir, "123"); got != "Jane Doe (WR BUF)" {
		t.Fatalf("PlayerName = %q", got)
	}
}

func TestPlayerName_FirstLastFallback(t *testing.T) {
	dir := trades.Directory{
		"456": map[string]any{"first_name": "John", "last_name": "Roe", "position": "RB"},
	}
	if got := PlayerName(dir, "456"); got != "John Roe (RB)" {
		t.Fatalf("PlayerName = %q", got)
	}
}

func TestPlayerName_UnknownIDReturnsID(t *testing.T) {
	if got := PlayerName(trades.Directory{}, "999"); got != "999" {
		t.Fatalf("PlayerName = %q", got)
	}
}

func TestPlayerName_EmptyID(t *testing.T) {
	if got := PlayerName(trades.Directory{}, ""); got != "Unknown" {
		t.Fatalf("PlayerName = %q", got)
	}
}

func TestPlayerName_NamelessRecordFallsBackToID(t *testing.T) {
	dir := trades.Directory{"777": map[string]any{}}
	if got := PlayerName(dir, "777"); got != "777" {
		t.Fatalf("PlayerName = %q", got)
	}
}
