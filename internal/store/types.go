package store

import (
	"fmt"
	"time"
)

// ContentType classifies a clipboard item. The set is closed; every value
// has exactly one wire form and unknown wire forms fail to decode.
type ContentType int

const (
	PlainText ContentType = iota + 1
	RichText
	Image
	File
)

var contentTypeNames = map[ContentType]string{
	PlainText: "plain_text",
	RichText:  "rich_text",
	Image:     "image",
	File:      "file",
}

var contentTypeValues = map[string]ContentType{
	"plain_text": PlainText,
	"rich_text":  RichText,
	"image":      Image,
	"file":       File,
}

// String returns the wire form of the content type.
func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ContentType(%d)", int(c))
}

// Valid reports whether c is one of the defined content types.
func (c ContentType) Valid() bool {
	_, ok := contentTypeNames[c]
	return ok
}

// ParseContentType decodes a wire form.
func ParseContentType(s string) (ContentType, error) {
	if c, ok := contentTypeValues[s]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownContentType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c ContentType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownContentType, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ContentType) UnmarshalText(text []byte) error {
	parsed, err := ParseContentType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Item is a clipboard item without its blobs.
// This lightweight representation is used for listing and search results.
// The thumbnail and rich content are retrieved separately.
type Item struct {
	// ID is the unique identifier, generated at insert.
	ID string

	ContentType ContentType

	// PlainText is the textual projection of the content. May be empty.
	PlainText string

	// ImagePath is the archived original for Image items.
	ImagePath string

	// FilePath and FileName describe the external file for File items.
	FilePath string
	FileName string

	SourceApp     string
	SourceAppName string

	// ContentSize is the raw content size in bytes, or the on-disk size
	// for File items.
	ContentSize int64

	// ContentHash is the hex-encoded SHA-256 of the raw content.
	ContentHash string

	IsFavorited bool

	CreatedAt time.Time

	// UpdatedAt is refreshed on dedup bump, favorite toggle and thumbnail fill.
	UpdatedAt time.Time
}

// ItemDetail is an item together with its rich content.
type ItemDetail struct {
	Item

	// RichContent is the stored rich payload decoded as UTF-8.
	// Invalid sequences are replaced.
	RichContent string

	HasThumbnail bool
}

// NewItem contains the data needed to insert a new item.
// The store assigns the ID and both timestamps.
type NewItem struct {
	ContentType   ContentType
	PlainText     string
	RichContent   []byte
	Thumbnail     []byte
	ImagePath     string
	FilePath      string
	FileName      string
	SourceApp     string
	SourceAppName string
	ContentSize   int64
	ContentHash   string
}

// ListQuery contains paging and filter parameters for listings.
type ListQuery struct {
	// ContentType restricts results to one type when non-nil.
	ContentType *ContentType

	// Limit is the maximum number of results. A value of 0 means no limit.
	Limit int

	Offset int
}

// SearchQuery contains parameters for searching items.
type SearchQuery struct {
	// Query is matched as a literal substring, not a pattern.
	Query string

	ContentType *ContentType

	// Limit is the maximum number of results. A value of 0 means no limit.
	Limit int
}

// Group is a named collection of items.
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
