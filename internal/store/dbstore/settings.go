package dbstore

import (
	"context"
	"fmt"
	"time"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
)

// sqliteSettingsStore implements store.SettingsStore using SQLite
type sqliteSettingsStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Get retrieves a setting by key
func (s *sqliteSettingsStore) Get(ctx context.Context, key string) (string, error) {
	var model SettingModel
	if err := s.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		return "", notFound("setting", key, err)
	}
	return model.Value, nil
}

// Set stores a setting (upsert)
func (s *sqliteSettingsStore) Set(ctx context.Context, key, value string) error {
	now := s.now().UnixNano()
	model := &SettingModel{
		Key:         key,
		Value:       value,
		UpdatedAtNs: now,
	}

	// Upsert: update if exists, insert if not
	result := s.db.WithContext(ctx).Where("key = ?", key).
		Assign(map[string]interface{}{"value": value, "updated_at": now}).
		FirstOrCreate(model)
	if result.Error != nil {
		return fmt.Errorf("failed to set setting: %w", result.Error)
	}
	return nil
}

// List returns all settings
func (s *sqliteSettingsStore) List(ctx context.Context) (map[string]string, error) {
	var models []SettingModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	result := make(map[string]string, len(models))
	for _, model := range models {
		result[model.Key] = model.Value
	}
	return result, nil
}

// Delete removes a setting
func (s *sqliteSettingsStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Delete(&SettingModel{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("setting %s: %w", key, store.ErrNotFound)
	}
	return nil
}
