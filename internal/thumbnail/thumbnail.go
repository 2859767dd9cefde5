// Package thumbnail scales clipboard images down to preview size and
// classifies image payloads and paths.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxWidth is the widest thumbnail produced. Narrower images keep their size.
const MaxWidth = 400

// DefaultExtension is used when an image payload cannot be identified.
const DefaultExtension = "png"

// imageExtensions lists file extensions that get a deferred thumbnail.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".ico":  true,
}

// Generate decodes an image and returns it as PNG, scaled to MaxWidth with
// Catmull-Rom resampling when wider. Aspect ratio is preserved.
func Generate(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out image.Image = src
	bounds := src.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > MaxWidth {
		height := int(float64(MaxWidth) / float64(w) * float64(h))
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, MaxWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Dimensions returns the width and height of an encoded image without
// decoding its pixels.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// IsImagePath reports whether path has a known image file extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsImageData reports whether data sniffs as an image format.
func IsImageData(data []byte) bool {
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}

// Extension sniffs the image format of data and returns a file extension
// without the leading dot. Non-image payloads get DefaultExtension.
func Extension(data []byte) string {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") || mt.Extension() == "" {
		return DefaultExtension
	}
	return strings.TrimPrefix(mt.Extension(), ".")
}
