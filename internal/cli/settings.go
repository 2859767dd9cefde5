package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/yiblet/clipvault/internal/config"
	"github.com/yiblet/clipvault/internal/store"
)

// executeConfig handles the 'clipvault config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configs.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.configs.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	default:
		values, err := c.configs.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		fmt.Fprintf(c.out, "Configuration (%s):\n", c.configs.GetConfigPath())
		for _, key := range config.Keys() {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	}
}

// executeSettings handles the 'clipvault settings' command
func (c *CLI) executeSettings(ctx context.Context, cmd *SettingsCmd) error {
	settings := c.store.Settings()

	switch {
	case cmd.Get != nil:
		value, err := settings.Get(ctx, cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get setting %s: %w", cmd.Get.Key, err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := validateSetting(cmd.Set.Key, cmd.Set.Value); err != nil {
			return err
		}
		if err := settings.Set(ctx, cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set setting: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	default:
		values, err := settings.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list settings: %w", err)
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(c.out, "Current settings:")
		for _, key := range keys {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	}
}

// validateSetting checks the values of the settings read by ingestion and
// retention. Other keys are stored as given.
func validateSetting(key, value string) error {
	switch key {
	case store.KeyMaxItemSizeMB:
		if n, err := strconv.Atoi(value); err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
	case store.KeyRetentionDays, store.KeyRetentionCount:
		if n, err := strconv.Atoi(value); err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", key)
		}
	case store.KeyRetentionPolicy:
		switch value {
		case store.PolicyUnlimited, store.PolicyDays, store.PolicyCount:
		default:
			return fmt.Errorf("%s must be one of %s, %s, %s", key, store.PolicyUnlimited, store.PolicyDays, store.PolicyCount)
		}
	}
	return nil
}
