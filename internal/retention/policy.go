package retention

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/yiblet/clipvault/internal/store"
)

// PolicyFromSettings builds the active retention policy from the settings
// store. An unknown policy name or a non-positive parameter yields a
// policy that removes nothing.
func PolicyFromSettings(ctx context.Context, settings store.SettingsStore) (store.RetentionPolicy, error) {
	name, err := lookup(ctx, settings, store.KeyRetentionPolicy)
	if err != nil {
		return store.RetentionPolicy{}, err
	}

	switch name {
	case store.PolicyDays:
		days, err := lookupInt(ctx, settings, store.KeyRetentionDays)
		if err != nil {
			return store.RetentionPolicy{}, err
		}
		return store.RetentionPolicy{Kind: store.RetainDays, Days: days}, nil
	case store.PolicyCount:
		count, err := lookupInt(ctx, settings, store.KeyRetentionCount)
		if err != nil {
			return store.RetentionPolicy{}, err
		}
		return store.RetentionPolicy{Kind: store.RetainCount, Count: count}, nil
	default:
		return store.RetentionPolicy{Kind: store.RetainUnlimited}, nil
	}
}

// lookup returns the setting value, or "" when it is not set
func lookup(ctx context.Context, settings store.SettingsStore, key string) (string, error) {
	value, err := settings.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// lookupInt parses an integer setting. Missing or malformed values read as 0.
func lookupInt(ctx context.Context, settings store.SettingsStore, key string) (int, error) {
	value, err := lookup(ctx, settings, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
