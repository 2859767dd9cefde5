package dbstore

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/gorm"
)

// minPhraseRunes is the trigram tokenizer's shingle size. Shorter queries
// cannot match the index and use a substring scan instead.
const minPhraseRunes = 3

// listScope builds the shared listing query: blob-free projection, optional
// type filter, newest first.
func listScope(db *gorm.DB, contentType *store.ContentType) *gorm.DB {
	q := db.Model(&ItemModel{}).
		Select(itemColumns).
		Order("updated_at DESC, rowid DESC")
	if contentType != nil {
		q = q.Where("content_type = ?", contentType.String())
	}
	return q
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

func findItems(q *gorm.DB) ([]*store.Item, error) {
	var models []*ItemModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]*store.Item, 0, len(models))
	for _, model := range models {
		item, err := model.ToItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// List returns items ordered by updated_at (newest first), excluding blobs
func (s *sqliteHistoryStore) List(ctx context.Context, query store.ListQuery) ([]*store.Item, error) {
	q := paginate(listScope(s.db.WithContext(ctx), query.ContentType), query.Limit, query.Offset)
	items, err := findItems(q)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Favorites returns favorited items ordered by updated_at (newest first)
func (s *sqliteHistoryStore) Favorites(ctx context.Context, query store.ListQuery) ([]*store.Item, error) {
	q := listScope(s.db.WithContext(ctx), query.ContentType).Where("is_favorited = ?", true)
	items, err := findItems(paginate(q, query.Limit, query.Offset))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return items, nil
}

// Search matches the query against plain_text, file_name and
// source_app_name. Queries of three or more characters use the trigram
// index as a quoted phrase and fold case for all of Unicode; shorter ones
// fall back to LIKE, which folds ASCII case only.
func (s *sqliteHistoryStore) Search(ctx context.Context, query store.SearchQuery) ([]*store.Item, error) {
	if query.Query == "" {
		return []*store.Item{}, nil
	}

	q := listScope(s.db.WithContext(ctx), query.ContentType)
	if utf8.RuneCountInString(query.Query) >= minPhraseRunes {
		q = q.Where(
			"id IN (SELECT item_id FROM clipboard_fts WHERE clipboard_fts MATCH ?)",
			phraseQuery(query.Query),
		)
	} else {
		pattern := "%" + escapeLike(query.Query) + "%"
		q = q.Where(
			`(plain_text LIKE ? ESCAPE '\' OR file_name LIKE ? ESCAPE '\' OR source_app_name LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	items, err := findItems(paginate(q, query.Limit, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

// phraseQuery quotes q as a single FTS5 phrase. Embedded quotes are doubled.
func phraseQuery(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}

// escapeLike escapes LIKE wildcards using backslash as the escape character.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}
