// Package clipboard defines the snapshot passed from a clipboard observer
// into ingestion, and the observer interface implemented by sysboard and
// mockboard.
package clipboard

import (
	"context"
	"path/filepath"

	"github.com/yiblet/clipvault/internal/store"
)

// Snapshot is one observed clipboard change.
// Data is the payload that is hashed and size-checked: the UTF-8 text for
// plain and rich text, the encoded image for images, and the path for files.
type Snapshot struct {
	ContentType store.ContentType
	Data        []byte

	PlainText   string
	RichContent []byte

	FilePath string
	FileName string

	SourceApp     string
	SourceAppName string
}

// Text returns a plain text snapshot.
func Text(text string) Snapshot {
	return Snapshot{
		ContentType: store.PlainText,
		Data:        []byte(text),
		PlainText:   text,
	}
}

// HTML returns a rich text snapshot. The plain text rendition is what
// dedup and search see.
func HTML(html, plain string) Snapshot {
	return Snapshot{
		ContentType: store.RichText,
		Data:        []byte(plain),
		PlainText:   plain,
		RichContent: []byte(html),
	}
}

// Image returns an image snapshot for encoded image bytes.
func Image(data []byte) Snapshot {
	return Snapshot{
		ContentType: store.Image,
		Data:        data,
	}
}

// File returns a snapshot referencing a file on disk.
func File(path string) Snapshot {
	return Snapshot{
		ContentType: store.File,
		Data:        []byte(path),
		PlainText:   path,
		FilePath:    path,
		FileName:    filepath.Base(path),
	}
}

// WithSource sets the originating application.
func (s Snapshot) WithSource(app, name string) Snapshot {
	s.SourceApp = app
	s.SourceAppName = name
	return s
}

// Observer watches a clipboard for changes and can write items back.
type Observer interface {
	// Watch emits a snapshot per change until ctx is cancelled, then
	// closes the channel.
	Watch(ctx context.Context) (<-chan Snapshot, error)

	// Write places a snapshot on the clipboard.
	Write(ctx context.Context, snap Snapshot) error
}
