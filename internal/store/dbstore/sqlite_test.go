package dbstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yiblet/clipvault/internal/store"
)

// testClock is a settable clock for deterministic timestamps
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*SQLiteStore, *testClock, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	clock := newTestClock()
	st, err := NewSQLiteStore(dbPath, DefaultConfig(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	cleanup := func() {
		st.Close()
	}

	return st, clock, cleanup
}

func hashOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// insertText stores a plain text item with its real hash
func insertText(t *testing.T, st *SQLiteStore, text string) string {
	t.Helper()
	id, err := st.History().Insert(context.Background(), &store.NewItem{
		ContentType: store.PlainText,
		PlainText:   text,
		ContentSize: int64(len(text)),
		ContentHash: hashOf(text),
	})
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", text, err)
	}
	return id
}

// ftsCount returns the number of rows in the search shadow table
func ftsCount(t *testing.T, st *SQLiteStore) int {
	t.Helper()
	var n int
	if err := st.db.Raw("SELECT COUNT(*) FROM clipboard_fts").Row().Scan(&n); err != nil {
		t.Fatalf("failed to count index rows: %v", err)
	}
	return n
}

// TestNewSQLiteStore tests database initialization
func TestNewSQLiteStore(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	for key, want := range store.DefaultSettings {
		got, err := st.Settings().Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", key, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}

	if _, err := os.Stat(st.Path()); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", st.Path())
	}
}

// TestNewSQLiteStore_KeepsSettings verifies reopening does not reset settings
func TestNewSQLiteStore_KeepsSettings(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "clipvault.db")
	ctx := context.Background()

	st, err := NewSQLiteStore(dbPath, DefaultConfig())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := st.Settings().Set(ctx, store.KeyMaxItemSizeMB, "25"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	id := insertText(t, st, "survives reopen")
	st.Close()

	st, err = NewSQLiteStore(dbPath, DefaultConfig())
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer st.Close()

	got, err := st.Settings().Get(ctx, store.KeyMaxItemSizeMB)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "25" {
		t.Errorf("max_item_size_mb = %q, want 25", got)
	}

	results, err := st.History().Search(ctx, store.SearchQuery{Query: "reopen"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Errorf("Search() after reopen = %v, want item %s", results, id)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  SQLiteConfig
		want string
	}{
		{"no pragmas", SQLiteConfig{}, "/tmp/x.db"},
		{"busy timeout", SQLiteConfig{BusyTimeoutMs: 250}, "/tmp/x.db?_pragma=busy_timeout%28250%29"},
		{"foreign keys", SQLiteConfig{ForeignKeys: true}, "/tmp/x.db?_pragma=foreign_keys%281%29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDSN("/tmp/x.db", tt.cfg); got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestHistoryStore_Insert covers a new plain text item
func TestHistoryStore_Insert(t *testing.T) {
	st, clock, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := insertText(t, st, "Hello, World!")
	if id == "" {
		t.Fatal("expected generated ID")
	}

	item, err := st.History().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if item.ContentType != store.PlainText {
		t.Errorf("ContentType = %v, want plain_text", item.ContentType)
	}
	if item.ContentHash != "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f" {
		t.Errorf("ContentHash = %s", item.ContentHash)
	}
	if item.IsFavorited {
		t.Error("new item should not be favorited")
	}
	if !item.CreatedAt.Equal(clock.Now()) || !item.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("timestamps = %v/%v, want %v", item.CreatedAt, item.UpdatedAt, clock.Now())
	}
	if item.ContentSize != 13 {
		t.Errorf("ContentSize = %d, want 13", item.ContentSize)
	}
	if n := ftsCount(t, st); n != 1 {
		t.Errorf("index rows = %d, want 1", n)
	}
}

func TestHistoryStore_InsertDuplicateHash(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertText(t, st, "same")

	_, err := st.History().Insert(ctx, &store.NewItem{
		ContentType: store.PlainText,
		PlainText:   "same",
		ContentHash: hashOf("same"),
	})
	if !errors.Is(err, store.ErrDuplicateHash) {
		t.Fatalf("Insert() error = %v, want ErrDuplicateHash", err)
	}

	count, err := st.History().Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	if n := ftsCount(t, st); n != 1 {
		t.Errorf("index rows = %d, want 1", n)
	}
}

func TestHistoryStore_InsertInvalidType(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := st.History().Insert(context.Background(), &store.NewItem{ContentHash: hashOf("x")})
	if !errors.Is(err, store.ErrUnknownContentType) {
		t.Fatalf("Insert() error = %v, want ErrUnknownContentType", err)
	}
}

func TestHistoryStore_FindAndBump(t *testing.T) {
	st, clock, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, found, err := st.History().FindAndBump(ctx, hashOf("missing")); err != nil || found {
		t.Fatalf("FindAndBump(missing) = found %v, err %v", found, err)
	}

	id := insertText(t, st, "Hello, World!")
	before, _ := st.History().Get(ctx, id)

	// Same instant: updated_at must still move forward
	bumped, found, err := st.History().FindAndBump(ctx, hashOf("Hello, World!"))
	if err != nil {
		t.Fatalf("FindAndBump() error = %v", err)
	}
	if !found || bumped != id {
		t.Fatalf("FindAndBump() = %s, %v; want %s, true", bumped, found, id)
	}
	after, _ := st.History().Get(ctx, id)
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}

	clock.Advance(time.Minute)
	if _, _, err := st.History().FindAndBump(ctx, hashOf("Hello, World!")); err != nil {
		t.Fatalf("FindAndBump() error = %v", err)
	}
	after, _ = st.History().Get(ctx, id)
	if !after.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", after.UpdatedAt, clock.Now())
	}

	count, _ := st.History().Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

// TestHistoryStore_FindAndBumpConcurrent verifies concurrent bumps all resolve to one row
func TestHistoryStore_FindAndBumpConcurrent(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := insertText(t, st, "contended")
	before, _ := st.History().Get(ctx, id)

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, found, err := st.History().FindAndBump(ctx, hashOf("contended"))
			if err != nil || !found {
				t.Errorf("FindAndBump() = %v, %v", found, err)
				return
			}
			ids[i] = got
		}(i)
	}
	wg.Wait()

	for i, got := range ids {
		if got != id {
			t.Errorf("worker %d got %s, want %s", i, got, id)
		}
	}

	after, _ := st.History().Get(ctx, id)
	if got := after.UpdatedAt.Sub(before.UpdatedAt); got != workers*time.Nanosecond {
		t.Errorf("UpdatedAt advanced by %v, want %v (one step per bump)", got, workers*time.Nanosecond)
	}
}

func TestHistoryStore_GetNotFound(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := st.History().Get(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := st.History().GetDetail(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetDetail() error = %v, want ErrNotFound", err)
	}
	if _, err := st.History().GetThumbnail(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetThumbnail() error = %v, want ErrNotFound", err)
	}
	if _, err := st.History().GetImagePath(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetImagePath() error = %v, want ErrNotFound", err)
	}
	if err := st.History().UpdateThumbnail(ctx, "nope", []byte{1}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateThumbnail() error = %v, want ErrNotFound", err)
	}
	if _, err := st.History().ToggleFavorite(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ToggleFavorite() error = %v, want ErrNotFound", err)
	}
	if err := st.History().Delete(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestHistoryStore_GetDetail(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id, err := st.History().Insert(ctx, &store.NewItem{
		ContentType:   store.RichText,
		PlainText:     "bold",
		RichContent:   []byte("<b>bold</b>\xff"),
		SourceApp:     "com.example.editor",
		SourceAppName: "Editor",
		ContentHash:   hashOf("<b>bold</b>"),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	detail, err := st.History().GetDetail(ctx, id)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if detail.RichContent != "<b>bold</b>�" {
		t.Errorf("RichContent = %q", detail.RichContent)
	}
	if detail.HasThumbnail {
		t.Error("HasThumbnail should be false")
	}
	if detail.SourceAppName != "Editor" || detail.ContentType != store.RichText {
		t.Errorf("unexpected detail: %+v", detail.Item)
	}
}

func TestHistoryStore_Thumbnail(t *testing.T) {
	st, clock, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id, err := st.History().Insert(ctx, &store.NewItem{
		ContentType: store.File,
		FilePath:    "/home/user/photo.png",
		FileName:    "photo.png",
		ContentHash: hashOf("/home/user/photo.png"),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	thumb, err := st.History().GetThumbnail(ctx, id)
	if err != nil {
		t.Fatalf("GetThumbnail() error = %v", err)
	}
	if thumb != nil {
		t.Errorf("GetThumbnail() = %v, want nil", thumb)
	}

	clock.Advance(time.Second)
	want := []byte{0x89, 'P', 'N', 'G'}
	if err := st.History().UpdateThumbnail(ctx, id, want); err != nil {
		t.Fatalf("UpdateThumbnail() error = %v", err)
	}

	thumb, err = st.History().GetThumbnail(ctx, id)
	if err != nil {
		t.Fatalf("GetThumbnail() error = %v", err)
	}
	if string(thumb) != string(want) {
		t.Errorf("GetThumbnail() = %v, want %v", thumb, want)
	}

	item, _ := st.History().Get(ctx, id)
	if !item.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", item.UpdatedAt, clock.Now())
	}
	detail, _ := st.History().GetDetail(ctx, id)
	if !detail.HasThumbnail {
		t.Error("HasThumbnail should be true after update")
	}
}

func TestHistoryStore_ToggleFavorite(t *testing.T) {
	st, clock, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := insertText(t, st, "keep me")

	for i, want := range []bool{true, false, true} {
		clock.Advance(time.Second)
		got, err := st.History().ToggleFavorite(ctx, id)
		if err != nil {
			t.Fatalf("ToggleFavorite() #%d error = %v", i, err)
		}
		if got != want {
			t.Errorf("ToggleFavorite() #%d = %v, want %v", i, got, want)
		}
		item, _ := st.History().Get(ctx, id)
		if item.IsFavorited != want {
			t.Errorf("IsFavorited #%d = %v, want %v", i, item.IsFavorited, want)
		}
		if !item.UpdatedAt.Equal(clock.Now()) {
			t.Errorf("UpdatedAt #%d = %v, want %v", i, item.UpdatedAt, clock.Now())
		}
	}
}

// TestHistoryStore_Delete verifies the item and its shadow row go together
func TestHistoryStore_Delete(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := insertText(t, st, "unique-token-4711")
	other := insertText(t, st, "something else")

	if err := st.History().Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := st.History().Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	results, err := st.History().Search(ctx, store.SearchQuery{Query: "unique-token-4711"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() after delete = %d hits, want 0", len(results))
	}
	if n := ftsCount(t, st); n != 1 {
		t.Errorf("index rows = %d, want 1", n)
	}
	if _, err := st.History().Get(ctx, other); err != nil {
		t.Errorf("other item should remain: %v", err)
	}
}

func TestHistoryStore_ImagePaths(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertText(t, st, "no image")
	for i := 0; i < 3; i++ {
		_, err := st.History().Insert(ctx, &store.NewItem{
			ContentType: store.Image,
			ImagePath:   fmt.Sprintf("/data/images/2024-03/%d.png", i),
			ContentHash: hashOf(fmt.Sprintf("image-%d", i)),
		})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	paths, err := st.History().ImagePaths(ctx)
	if err != nil {
		t.Fatalf("ImagePaths() error = %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("ImagePaths() = %v, want 3 paths", paths)
	}
}

func TestSettingsStore(t *testing.T) {
	st, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	settings := st.Settings()

	if _, err := settings.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := settings.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := settings.Set(ctx, "theme", "light"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, err := settings.Get(ctx, "theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "light" {
		t.Errorf("Get() = %q, want light", got)
	}

	all, err := settings.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != len(store.DefaultSettings)+1 {
		t.Errorf("List() has %d keys, want %d", len(all), len(store.DefaultSettings)+1)
	}

	if err := settings.Delete(ctx, "theme"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := settings.Delete(ctx, "theme"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
