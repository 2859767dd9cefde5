package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/ingest"
	"github.com/yiblet/clipvault/internal/logger"
	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/retention"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/dbstore"
	"github.com/yiblet/clipvault/internal/worker"
)

type demoArgs struct {
	DataDir string `arg:"--data-dir" help:"data directory to seed (default: a new temporary directory)"`
	Keep    int    `arg:"--keep" default:"4" help:"count policy applied at the end"`
}

func main() {
	var args demoArgs
	arg.MustParse(&args)
	fmt.Println("clipvault Ingestion Demo")

	if args.DataDir == "" {
		dir, err := os.MkdirTemp("", "clipvault-demo-")
		if err != nil {
			log.Fatalf("Failed to create temp dir: %v", err)
		}
		args.DataDir = dir
	}

	zl, err := logger.New("warn", "console", os.Stderr)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	files, err := datafs.NewWithDataPath(args.DataDir)
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := dbstore.NewSQLiteStore(files.DBPath(), dbstore.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	manager := ingest.NewManager(st, files, worker.NewPool(2), zl)
	defer manager.Wait()

	snapshots := []clipboard.Snapshot{
		clipboard.Text("Hello, World! This is the first clip."),
		clipboard.Text("package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, Go!\")\n}"),
		clipboard.HTML("<p>Meeting notes: <b>ship on Friday</b></p>", "Meeting notes: ship on Friday").WithSource("com.example.mail", "Mail"),
		clipboard.Text("SELECT * FROM users WHERE created_at > '2023-01-01' ORDER BY created_at DESC LIMIT 10;"),
		clipboard.Image(gradientPNG(640, 320)).WithSource("com.example.shot", "Screenshot"),
		clipboard.Text("Hello, World! This is the first clip."),
	}

	fmt.Println("Ingesting snapshots:")
	for i, snap := range snapshots {
		res, err := manager.Ingest(ctx, snap)
		if err != nil {
			log.Printf("Failed to ingest snapshot %d: %v", i, err)
			continue
		}
		fmt.Printf("%d. %-7s %s\n", i+1, res.Status, res.ID)
	}

	printHistory(ctx, st, "\nHistory (newest first):")

	items, err := st.History().Search(ctx, store.SearchQuery{Query: "hello"})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	fmt.Printf("\nSearch for %q: %d match(es)\n", "hello", len(items))

	engine := retention.NewEngine(st, files, zl)
	policy := store.RetentionPolicy{Kind: store.RetainCount, Count: args.Keep}
	removed, err := engine.Apply(ctx, policy, "demo")
	if err != nil {
		log.Fatalf("Retention failed: %v", err)
	}
	engine.Wait()
	fmt.Printf("\nRetention policy %s removed %d item(s)\n", policy, removed)

	printHistory(ctx, st, "\nHistory after retention:")
	fmt.Printf("\nDemo complete! Browse it with: clipvault --data-dir %s\n", args.DataDir)
}

func printHistory(ctx context.Context, st store.Store, heading string) {
	items, err := st.History().List(ctx, store.ListQuery{})
	if err != nil {
		log.Fatalf("Failed to list items: %v", err)
	}
	fmt.Println(heading)
	for i, item := range items {
		fmt.Printf("%d. [%s] %-10s %s\n", i, item.UpdatedAt.Format("15:04:05"), item.ContentType, preview.Title(item, preview.DefaultTitleLen))
	}
}

func gradientPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode image: %v", err)
	}
	return buf.Bytes()
}
