package ingest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/dbstore"
	"github.com/yiblet/clipvault/internal/thumbnail"
	"github.com/yiblet/clipvault/internal/worker"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// setupTestManager creates a manager over a temporary store and archive
func setupTestManager(t *testing.T) (*Manager, *dbstore.SQLiteStore, string, func()) {
	t.Helper()

	root := t.TempDir()
	files := datafs.NewWithRoot(root)
	now := func() time.Time { return testNow }

	st, err := dbstore.NewSQLiteStore(files.DBPath(), dbstore.DefaultConfig(), dbstore.WithClock(now))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	m := NewManager(st, files, worker.NewPool(2), zerolog.Nop(), WithClock(now))
	cleanup := func() {
		m.Wait()
		st.Close()
	}
	return m, st, root, cleanup
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestIngest_PlainText(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	res, err := m.Ingest(ctx, clipboard.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.Status != Stored || res.ID == "" {
		t.Fatalf("Ingest() = %+v, want stored item", res)
	}

	item, err := st.History().Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if item.ContentType != store.PlainText {
		t.Errorf("ContentType = %v, want plain_text", item.ContentType)
	}
	if item.ContentHash != ComputeHash([]byte("Hello, World!")) {
		t.Errorf("ContentHash = %s", item.ContentHash)
	}
	if item.IsFavorited {
		t.Error("new item should not be favorited")
	}
	if item.ContentSize != 13 {
		t.Errorf("ContentSize = %d, want 13", item.ContentSize)
	}
}

func TestIngest_DuplicateBumps(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	first, err := m.Ingest(ctx, clipboard.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	before, err := st.History().Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	second, err := m.Ingest(ctx, clipboard.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if second.Status != Bumped || second.ID != first.ID {
		t.Errorf("second Ingest() = %+v, want bumped %s", second, first.ID)
	}

	after, err := st.History().Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}

	count, err := st.History().Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestIngest_ConcurrentDuplicates(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.Ingest(ctx, clipboard.Text("same content"))
			ids[i], errs[i] = res.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("Ingest() error = %v", errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("ingestion %d returned %s, want %s", i, ids[i], ids[0])
		}
	}
	count, err := st.History().Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestIngest_Image(t *testing.T) {
	m, st, root, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	data := encodePNG(t, 800, 600)
	res, err := m.Ingest(ctx, clipboard.Image(data))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.Status != Stored {
		t.Fatalf("Ingest() status = %v, want stored", res.Status)
	}

	thumb, err := st.History().GetThumbnail(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetThumbnail() error = %v", err)
	}
	w, h, err := thumbnail.Dimensions(thumb)
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 400 || h != 300 {
		t.Errorf("thumbnail = %dx%d, want 400x300", w, h)
	}

	path, err := st.History().GetImagePath(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetImagePath() error = %v", err)
	}
	if dir := filepath.Join(root, "images", "2024-03"); filepath.Dir(path) != dir {
		t.Errorf("image dir = %s, want %s", filepath.Dir(path), dir)
	}
	base := filepath.Base(path)
	if filepath.Ext(base) != ".png" {
		t.Errorf("image extension = %q, want .png", filepath.Ext(base))
	}
	if _, err := uuid.Parse(strings.TrimSuffix(base, ".png")); err != nil {
		t.Errorf("image name %q is not a uuid: %v", base, err)
	}
	archived, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(archived, data) {
		t.Error("archived image differs from the original")
	}
}

func TestIngest_Skips(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	dir := t.TempDir()
	tests := []struct {
		name string
		snap clipboard.Snapshot
	}{
		{"empty text", clipboard.Text("")},
		{"empty image", clipboard.Image(nil)},
		{"directory", clipboard.File(dir)},
		{"missing file", clipboard.File(filepath.Join(dir, "missing.txt"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Ingest(ctx, tt.snap)
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if res.Status != Skipped || res.ID != "" {
				t.Errorf("Ingest() = %+v, want skipped", res)
			}
		})
	}

	count, err := st.History().Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestIngest_SizeLimit(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.Settings().Set(ctx, store.KeyMaxItemSizeMB, "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	const mib = 1024 * 1024
	tests := []struct {
		name string
		text string
		want Status
	}{
		{"exact boundary", strings.Repeat("a", mib), Stored},
		{"one byte over", strings.Repeat("b", mib+1), Skipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Ingest(ctx, clipboard.Text(tt.text))
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if res.Status != tt.want {
				t.Errorf("Ingest() status = %v, want %v", res.Status, tt.want)
			}
		})
	}
}

func TestIngest_InvalidSizeSettingUsesDefault(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.Settings().Set(ctx, store.KeyMaxItemSizeMB, "lots"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := m.sizeLimitMB(ctx); got != DefaultMaxItemSizeMB {
		t.Errorf("sizeLimitMB() = %d, want %d", got, DefaultMaxItemSizeMB)
	}
}

func TestIngest_FileUsesDiskSize(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 4096), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := m.Ingest(ctx, clipboard.File(path))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	item, err := st.History().Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if item.ContentSize != 4096 {
		t.Errorf("ContentSize = %d, want 4096", item.ContentSize)
	}
	if item.FileName != "report.txt" || item.FilePath != path {
		t.Errorf("file fields = %q, %q", item.FileName, item.FilePath)
	}
	if item.ContentHash != ComputeHash([]byte(path)) {
		t.Errorf("ContentHash should be the hash of the path")
	}
}

func TestIngest_DeferredThumbnail(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	events, unsub := m.Events().Subscribe()
	defer unsub()

	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, encodePNG(t, 800, 600), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := m.Ingest(ctx, clipboard.File(path))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	m.Wait()

	want := []EventKind{EventStored, EventThumbnailReady}
	for _, kind := range want {
		select {
		case ev := <-events:
			if ev.ItemID != res.ID || ev.Kind != kind {
				t.Errorf("event = %+v, want %v for %s", ev, kind, res.ID)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %v", kind)
		}
	}

	thumb, err := st.History().GetThumbnail(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetThumbnail() error = %v", err)
	}
	w, h, err := thumbnail.Dimensions(thumb)
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 400 || h != 300 {
		t.Errorf("thumbnail = %dx%d, want 400x300", w, h)
	}
}

func TestIngest_DeferredThumbnailFailureKeepsRow(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := m.Ingest(ctx, clipboard.File(path))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	m.Wait()

	thumb, err := st.History().GetThumbnail(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetThumbnail() error = %v", err)
	}
	if thumb != nil {
		t.Errorf("GetThumbnail() = %d bytes, want none", len(thumb))
	}
}

func TestRun_ConsumesUntilClosed(t *testing.T) {
	m, st, _, cleanup := setupTestManager(t)
	defer cleanup()
	ctx := context.Background()

	ch := make(chan clipboard.Snapshot, 3)
	ch <- clipboard.Text("one")
	ch <- clipboard.Text("two")
	ch <- clipboard.Text("one")
	close(ch)

	if err := m.Run(ctx, ch); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	count, err := st.History().Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestRun_AcceptsWhileImageIngests(t *testing.T) {
	root := t.TempDir()
	files := datafs.NewWithRoot(root)
	st, err := dbstore.NewSQLiteStore(files.DBPath(), dbstore.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	defer st.Close()

	// Hold the only pool slot so the image stays mid-ingestion.
	pool := worker.NewPool(1)
	held := make(chan struct{})
	release := make(chan struct{})
	go pool.Do(context.Background(), func() error {
		close(held)
		<-release
		return nil
	})
	<-held

	m := NewManager(st, files, pool, zerolog.Nop())
	defer m.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan clipboard.Snapshot)
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx, ch) }()

	ch <- clipboard.Image(encodePNG(t, 1200, 900))

	for _, text := range []string{"copied during thumbnailing", "and another"} {
		select {
		case ch <- clipboard.Text(text):
		case <-time.After(time.Second):
			close(release)
			t.Fatalf("observer blocked sending %q while an image was ingesting", text)
		}
	}

	close(release)
	close(ch)
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return after the channel closed")
	}

	items, err := st.History().List(context.Background(), store.ListQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("List() returned %d items, want 3", len(items))
	}
	// Ingestion keeps arrival order.
	if items[0].PlainText != "and another" || items[2].ContentType != store.Image {
		t.Errorf("unexpected order: %s, %s, %s", items[0].ContentType, items[1].ContentType, items[2].ContentType)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	m, _, _, cleanup := setupTestManager(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan clipboard.Snapshot)
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx, ch) }()

	ch <- clipboard.Text("before cancel")
	cancel()

	select {
	case err := <-runErr:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
