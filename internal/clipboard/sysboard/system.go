// Package sysboard observes the system clipboard through
// golang.design/x/clipboard. On Linux the HTML flavour is read with xclip
// when it is installed, since the library only exposes text and images.
package sysboard

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/store"
	xclipboard "golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init initializes the platform clipboard once per process.
func Init() error {
	initOnce.Do(func() {
		initErr = xclipboard.Init()
	})
	return initErr
}

// SystemClipboard implements clipboard.Observer for the system clipboard
type SystemClipboard struct{}

var _ clipboard.Observer = (*SystemClipboard)(nil)

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{}
}

// IsSupported returns true if the system clipboard can be opened
func (s *SystemClipboard) IsSupported() bool {
	return Init() == nil
}

// Watch implements clipboard.Observer.Watch. Text and image changes are
// merged into one stream and classified.
func (s *SystemClipboard) Watch(ctx context.Context) (<-chan clipboard.Snapshot, error) {
	if err := Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	texts := xclipboard.Watch(ctx, xclipboard.FmtText)
	images := xclipboard.Watch(ctx, xclipboard.FmtImage)

	out := make(chan clipboard.Snapshot)
	go func() {
		defer close(out)
		for texts != nil || images != nil {
			var snap clipboard.Snapshot
			select {
			case <-ctx.Done():
				return
			case data, ok := <-texts:
				if !ok {
					texts = nil
					continue
				}
				snap = classifyText(data)
			case data, ok := <-images:
				if !ok {
					images = nil
					continue
				}
				snap = clipboard.Image(data)
			}

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Write implements clipboard.Observer.Write
func (s *SystemClipboard) Write(ctx context.Context, snap clipboard.Snapshot) error {
	if err := Init(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	switch snap.ContentType {
	case store.Image:
		if len(snap.Data) == 0 {
			return fmt.Errorf("image has no data")
		}
		xclipboard.Write(xclipboard.FmtImage, snap.Data)
	case store.File:
		xclipboard.Write(xclipboard.FmtText, []byte(snap.FilePath))
	default:
		xclipboard.Write(xclipboard.FmtText, []byte(snap.PlainText))
	}
	return nil
}

// classifyText turns a text change into a file, rich text or plain text
// snapshot. Files come first: a single file:// URI or an absolute path
// to an existing file is treated as a copied file.
func classifyText(data []byte) clipboard.Snapshot {
	text := string(data)
	if path, ok := filePath(text); ok {
		return clipboard.File(path)
	}
	if html, err := readHTML(); err == nil && len(bytes.TrimSpace(html)) > 0 {
		if strings.TrimSpace(text) == "" {
			text = clipboard.HTMLText(html)
		}
		return clipboard.HTML(string(html), text)
	}
	return clipboard.Text(text)
}

// filePath recognizes a single copied file in text form
func filePath(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "\r\n") {
		return "", false
	}
	if strings.HasPrefix(text, "file://") {
		u, err := url.Parse(text)
		if err != nil {
			return "", false
		}
		text = u.Path
	}
	if !filepath.IsAbs(text) {
		return "", false
	}
	if _, err := os.Stat(text); err != nil {
		return "", false
	}
	return text, true
}

// readHTML reads the text/html target on Linux using xclip
func readHTML() ([]byte, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("html clipboard not supported on %s", runtime.GOOS)
	}
	if !hasHTMLTarget() {
		return nil, fmt.Errorf("clipboard has no html target")
	}
	return readWithCommand("xclip", "-selection", "clipboard", "-t", "text/html", "-o")
}

// hasHTMLTarget reports whether the current selection offers text/html
func hasHTMLTarget() bool {
	targets, err := readWithCommand("xclip", "-selection", "clipboard", "-t", "TARGETS", "-o")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(targets), "\n") {
		if strings.TrimSpace(line) == "text/html" {
			return true
		}
	}
	return false
}

// readWithCommand executes a command and returns its output
func readWithCommand(name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, err
	}
	cmd := exec.Command(name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
