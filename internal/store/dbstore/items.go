package dbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sqliteHistoryStore implements store.HistoryStore using SQLite with an
// FTS5 shadow table for search
type sqliteHistoryStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Insert stores the item row and its shadow row in one transaction
func (s *sqliteHistoryStore) Insert(ctx context.Context, item *store.NewItem) (string, error) {
	if !item.ContentType.Valid() {
		return "", fmt.Errorf("failed to insert item: %w: %d", store.ErrUnknownContentType, int(item.ContentType))
	}

	now := s.now().UnixNano()
	model := &ItemModel{
		ID:            uuid.NewString(),
		ContentType:   item.ContentType.String(),
		PlainText:     item.PlainText,
		RichContent:   item.RichContent,
		Thumbnail:     item.Thumbnail,
		ImagePath:     item.ImagePath,
		FilePath:      item.FilePath,
		FileName:      item.FileName,
		SourceApp:     item.SourceApp,
		SourceAppName: item.SourceAppName,
		ContentSize:   item.ContentSize,
		ContentHash:   item.ContentHash,
		CreatedAtNs:   now,
		UpdatedAtNs:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).Create(model)
		if result.Error != nil {
			return fmt.Errorf("failed to create item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return store.ErrDuplicateHash
		}

		if err := tx.Exec(
			"INSERT INTO clipboard_fts (item_id, plain_text, file_name, source_app_name) VALUES (?, ?, ?, ?)",
			model.ID, model.PlainText, model.FileName, model.SourceAppName,
		).Error; err != nil {
			return fmt.Errorf("failed to index item: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return model.ID, nil
}

// FindAndBump advances updated_at of the item with the given hash and
// returns its ID. The lookup and update are a single statement. The new
// value is always greater than the old one, even when the clock has not
// moved.
func (s *sqliteHistoryStore) FindAndBump(ctx context.Context, hash string) (string, bool, error) {
	var id string
	err := s.db.WithContext(ctx).Raw(
		"UPDATE clipboard_items SET updated_at = MAX(?, updated_at + 1) WHERE content_hash = ? RETURNING id",
		s.now().UnixNano(), hash,
	).Row().Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to bump item: %w", err)
	}
	return id, true, nil
}

// Get retrieves a single item by ID, excluding blobs
func (s *sqliteHistoryStore) Get(ctx context.Context, id string) (*store.Item, error) {
	var model ItemModel
	if err := s.db.WithContext(ctx).
		Select(itemColumns).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound("item", id, err)
	}
	return model.ToItem()
}

// GetDetail retrieves an item with its rich content
func (s *sqliteHistoryStore) GetDetail(ctx context.Context, id string) (*store.ItemDetail, error) {
	var model ItemModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound("item", id, err)
	}
	return model.ToItemDetail()
}

// GetThumbnail returns the thumbnail blob or nil
func (s *sqliteHistoryStore) GetThumbnail(ctx context.Context, id string) ([]byte, error) {
	var model ItemModel
	if err := s.db.WithContext(ctx).
		Select("id", "thumbnail").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound("item", id, err)
	}
	if len(model.Thumbnail) == 0 {
		return nil, nil
	}
	return model.Thumbnail, nil
}

// GetImagePath returns the archived image path or ""
func (s *sqliteHistoryStore) GetImagePath(ctx context.Context, id string) (string, error) {
	var model ItemModel
	if err := s.db.WithContext(ctx).
		Select("id", "image_path").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return "", notFound("item", id, err)
	}
	return model.ImagePath, nil
}

// UpdateThumbnail sets the thumbnail and refreshes updated_at
func (s *sqliteHistoryStore) UpdateThumbnail(ctx context.Context, id string, thumbnail []byte) error {
	result := s.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"thumbnail":  thumbnail,
			"updated_at": gorm.Expr("MAX(?, updated_at + 1)", s.now().UnixNano()),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update thumbnail: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// ToggleFavorite flips is_favorited in one statement and returns the new value
func (s *sqliteHistoryStore) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var favorited bool
	err := s.db.WithContext(ctx).Raw(
		"UPDATE clipboard_items SET is_favorited = NOT is_favorited, updated_at = MAX(?, updated_at + 1) WHERE id = ? RETURNING is_favorited",
		s.now().UnixNano(), id,
	).Row().Scan(&favorited)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorited, nil
}

// Delete removes the shadow row, group memberships and item row together
func (s *sqliteHistoryStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM clipboard_fts WHERE item_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete index row: %w", err)
		}
		if err := tx.Where("item_id = ?", id).Delete(&ItemGroupModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete group memberships: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&ItemModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("item %s: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

// Count returns the total number of items
func (s *sqliteHistoryStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ItemModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(count), nil
}

// ImagePaths returns every non-empty image_path
func (s *sqliteHistoryStore) ImagePaths(ctx context.Context) ([]string, error) {
	var paths []string
	if err := s.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("image_path <> ''").
		Pluck("image_path", &paths).Error; err != nil {
		return nil, fmt.Errorf("failed to list image paths: %w", err)
	}
	return paths, nil
}

// notFound maps gorm.ErrRecordNotFound to store.ErrNotFound
func notFound(kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}
