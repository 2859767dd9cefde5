package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// DefaultMaxBytes is how much of a file ReadFile returns by default.
const DefaultMaxBytes = 64 * 1024

// ErrNotText is returned for files that are not valid UTF-8 text.
var ErrNotText = errors.New("file is not UTF-8 text")

// FileContent is the head of a text file.
type FileContent struct {
	Text      string
	Lines     int
	Truncated bool
}

// ReadFile reads at most maxBytes of a text file. A cut in the middle of
// a multi-byte sequence is trimmed back to the last full rune.
func ReadFile(path string, maxBytes int) (*FileContent, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, maxBytes+1)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	buf = buf[:n]

	truncated := n > maxBytes
	if truncated {
		buf = buf[:maxBytes]
		for i := 0; i < utf8.UTFMax && len(buf) > 0 && !utf8.Valid(buf); i++ {
			buf = buf[:len(buf)-1]
		}
	}
	if !utf8.Valid(buf) || bytes.IndexByte(buf, 0) >= 0 {
		return nil, ErrNotText
	}

	lines := bytes.Count(buf, []byte("\n"))
	if len(buf) > 0 && buf[len(buf)-1] != '\n' {
		lines++
	}
	return &FileContent{Text: string(buf), Lines: lines, Truncated: truncated}, nil
}
