package dbstore

import (
	"context"
	"fmt"
	"time"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
)

// countPredicate keeps the newest non-favorited rows, ordered like List.
const countPredicate = "is_favorited = 0 AND id NOT IN (" +
	"SELECT id FROM clipboard_items WHERE is_favorited = 0 " +
	"ORDER BY updated_at DESC, rowid DESC LIMIT ?)"

// retentionPredicate returns the WHERE clause over clipboard_items that
// selects the rows a policy removes. Favorited rows are always excluded.
// ok is false when the policy removes nothing.
func (s *sqliteHistoryStore) retentionPredicate(policy store.RetentionPolicy) (string, []interface{}, bool) {
	if policy.IsNoop() {
		return "", nil, false
	}

	switch policy.Kind {
	case store.RetainDays:
		now := policy.Now
		if now.IsZero() {
			now = s.now()
		}
		cutoff := now.Add(-time.Duration(policy.Days) * 24 * time.Hour).UnixNano()
		return "is_favorited = 0 AND created_at < ?", []interface{}{cutoff}, true
	case store.RetainCount:
		return countPredicate, []interface{}{policy.Count}, true
	case store.RetainNone:
		return "is_favorited = 0", nil, true
	}
	return "", nil, false
}

// RetentionImagePaths returns the image paths of rows Cleanup would remove
func (s *sqliteHistoryStore) RetentionImagePaths(ctx context.Context, policy store.RetentionPolicy) ([]string, error) {
	pred, args, ok := s.retentionPredicate(policy)
	if !ok {
		return nil, nil
	}

	var paths []string
	if err := s.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where(pred, args...).
		Where("image_path <> ''").
		Pluck("image_path", &paths).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve retention paths: %w", err)
	}
	return paths, nil
}

// Cleanup deletes shadow rows, group memberships and item rows selected by
// the policy in one transaction
func (s *sqliteHistoryStore) Cleanup(ctx context.Context, policy store.RetentionPolicy) (int, error) {
	pred, args, ok := s.retentionPredicate(policy)
	if !ok {
		return 0, nil
	}

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		selected := "SELECT id FROM clipboard_items WHERE " + pred

		if err := tx.Exec("DELETE FROM clipboard_fts WHERE item_id IN ("+selected+")", args...).Error; err != nil {
			return fmt.Errorf("failed to delete index rows: %w", err)
		}
		if err := tx.Exec("DELETE FROM item_groups WHERE item_id IN ("+selected+")", args...).Error; err != nil {
			return fmt.Errorf("failed to delete group memberships: %w", err)
		}

		result := tx.Exec("DELETE FROM clipboard_items WHERE "+pred, args...)
		if result.Error != nil {
			return fmt.Errorf("failed to delete items: %w", result.Error)
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
