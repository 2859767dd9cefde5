package dbstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sqliteGroupStore implements store.GroupStore using SQLite
type sqliteGroupStore struct {
	db  *gorm.DB
	now func() time.Time
}

// CreateGroup creates a group with a unique, non-empty name
func (s *sqliteGroupStore) CreateGroup(ctx context.Context, name string) (*store.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("group name cannot be empty")
	}

	model := &GroupModel{
		ID:          uuid.NewString(),
		Name:        name,
		CreatedAtNs: s.now().UnixNano(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&GroupModel{}).Where("name = ?", name).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check group name: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%q: %w", name, store.ErrDuplicateGroup)
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model.ToGroup(), nil
}

// ListGroups returns all groups ordered by name
func (s *sqliteGroupStore) ListGroups(ctx context.Context) ([]*store.Group, error) {
	var models []*GroupModel
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups := make([]*store.Group, len(models))
	for i, model := range models {
		groups[i] = model.ToGroup()
	}
	return groups, nil
}

// DeleteGroup removes a group and its memberships
func (s *sqliteGroupStore) DeleteGroup(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&ItemGroupModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete group memberships: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&GroupModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete group: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("group %s: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

// AddItem adds an item to a group
func (s *sqliteGroupStore) AddItem(ctx context.Context, groupID, itemID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &GroupModel{}, "group", groupID); err != nil {
			return err
		}
		if err := exists(tx, &ItemModel{}, "item", itemID); err != nil {
			return err
		}
		membership := &ItemGroupModel{
			ItemID:      itemID,
			GroupID:     groupID,
			CreatedAtNs: s.now().UnixNano(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(membership).Error; err != nil {
			return fmt.Errorf("failed to add item to group: %w", err)
		}
		return nil
	})
}

// RemoveItem removes an item from a group
func (s *sqliteGroupStore) RemoveItem(ctx context.Context, groupID, itemID string) error {
	result := s.db.WithContext(ctx).
		Where("group_id = ? AND item_id = ?", groupID, itemID).
		Delete(&ItemGroupModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item from group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item %s in group %s: %w", itemID, groupID, store.ErrNotFound)
	}
	return nil
}

// Items lists the items of a group, newest first
func (s *sqliteGroupStore) Items(ctx context.Context, groupID string, query store.ListQuery) ([]*store.Item, error) {
	db := s.db.WithContext(ctx)
	if err := exists(db, &GroupModel{}, "group", groupID); err != nil {
		return nil, err
	}

	q := listScope(db, query.ContentType).
		Where("id IN (SELECT item_id FROM item_groups WHERE group_id = ?)", groupID)
	items, err := findItems(paginate(q, query.Limit, query.Offset))
	if err != nil {
		return nil, fmt.Errorf("failed to list group items: %w", err)
	}
	return items, nil
}

// exists returns store.ErrNotFound if no row of model has the given id
func exists(db *gorm.DB, model interface{}, kind, id string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return nil
}
