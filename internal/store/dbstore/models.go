package dbstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/yiblet/clipvault/internal/store"
)

// ItemModel represents a clipboard item in the database.
// Timestamps are unix nanoseconds so ordering and cutoffs are exact.
type ItemModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	ContentType   string `gorm:"size:16;not null;index"`
	PlainText     string `gorm:"type:text;not null"`
	RichContent   []byte `gorm:"type:blob"` // HTML payload for rich text
	Thumbnail     []byte `gorm:"type:blob"` // PNG, at most 400px wide
	ImagePath     string `gorm:"type:text;not null"`
	FilePath      string `gorm:"type:text;not null"`
	FileName      string `gorm:"type:text;not null"`
	SourceApp     string `gorm:"type:text;not null"`
	SourceAppName string `gorm:"type:text;not null"`
	ContentSize   int64  `gorm:"not null"`
	ContentHash   string `gorm:"size:64;not null;uniqueIndex:idx_items_content_hash"`
	IsFavorited   bool   `gorm:"not null;index"`
	CreatedAtNs   int64  `gorm:"column:created_at;not null;index"`
	UpdatedAtNs   int64  `gorm:"column:updated_at;not null;index"`
}

// TableName returns the table name for ItemModel
func (ItemModel) TableName() string {
	return "clipboard_items"
}

// ToItem converts the GORM model to a store.Item
func (m *ItemModel) ToItem() (*store.Item, error) {
	ct, err := store.ParseContentType(m.ContentType)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", m.ID, err)
	}
	return &store.Item{
		ID:            m.ID,
		ContentType:   ct,
		PlainText:     m.PlainText,
		ImagePath:     m.ImagePath,
		FilePath:      m.FilePath,
		FileName:      m.FileName,
		SourceApp:     m.SourceApp,
		SourceAppName: m.SourceAppName,
		ContentSize:   m.ContentSize,
		ContentHash:   m.ContentHash,
		IsFavorited:   m.IsFavorited,
		CreatedAt:     time.Unix(0, m.CreatedAtNs),
		UpdatedAt:     time.Unix(0, m.UpdatedAtNs),
	}, nil
}

// ToItemDetail converts the GORM model to a store.ItemDetail
func (m *ItemModel) ToItemDetail() (*store.ItemDetail, error) {
	item, err := m.ToItem()
	if err != nil {
		return nil, err
	}
	return &store.ItemDetail{
		Item:         *item,
		RichContent:  strings.ToValidUTF8(string(m.RichContent), "\uFFFD"),
		HasThumbnail: len(m.Thumbnail) > 0,
	}, nil
}

// itemColumns is the listing projection. Blobs are excluded.
var itemColumns = []string{
	"id", "content_type", "plain_text", "image_path", "file_path", "file_name",
	"source_app", "source_app_name", "content_size", "content_hash",
	"is_favorited", "created_at", "updated_at",
}

// GroupModel represents a named item group
type GroupModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	CreatedAtNs int64  `gorm:"column:created_at;not null"`
}

// TableName returns the table name for GroupModel
func (GroupModel) TableName() string {
	return "clip_groups"
}

// ToGroup converts the GORM model to a store.Group
func (m *GroupModel) ToGroup() *store.Group {
	return &store.Group{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: time.Unix(0, m.CreatedAtNs),
	}
}

// ItemGroupModel associates an item with a group
type ItemGroupModel struct {
	ItemID      string `gorm:"primaryKey;size:36"`
	GroupID     string `gorm:"primaryKey;size:36;index"`
	CreatedAtNs int64  `gorm:"column:created_at;not null"`
}

// TableName returns the table name for ItemGroupModel
func (ItemGroupModel) TableName() string {
	return "item_groups"
}

// SettingModel represents a runtime setting key-value pair
type SettingModel struct {
	Key         string `gorm:"primaryKey;size:100"`
	Value       string `gorm:"type:text;not null"`
	UpdatedAtNs int64  `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for SettingModel
func (SettingModel) TableName() string {
	return "settings"
}

// ftsSchema creates the trigram search shadow table. Only item_id is
// unindexed; the other columns mirror the item row.
const ftsSchema = `CREATE VIRTUAL TABLE IF NOT EXISTS clipboard_fts USING fts5(
	item_id UNINDEXED,
	plain_text,
	file_name,
	source_app_name,
	tokenize = 'trigram'
)`
