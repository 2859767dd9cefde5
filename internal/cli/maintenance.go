package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/yiblet/clipvault/internal/retention"
)

// executeClear handles the 'clipvault clear' command
func (c *CLI) executeClear(ctx context.Context, cmd *ClearCmd) error {
	count, err := c.store.History().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count items: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(c.out, "History is already empty.")
		return nil
	}

	// Prompt for confirmation unless --force is used
	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete all non-favorite items (%d item(s) stored). Continue? [y/N]: ", count)
		var response string
		fmt.Fscanln(c.in, &response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	removed, err := c.retention.ClearHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintf(c.out, "Cleared %d item(s) from history.\n", removed)
	return nil
}

// executeCleanup handles the 'clipvault cleanup' command
func (c *CLI) executeCleanup(ctx context.Context) error {
	policy, err := retention.PolicyFromSettings(ctx, c.store.Settings())
	if err != nil {
		return fmt.Errorf("failed to read retention policy: %w", err)
	}

	removed, err := c.retention.Apply(ctx, policy, "policy")
	if err != nil {
		return fmt.Errorf("failed to apply retention policy: %w", err)
	}

	fmt.Fprintf(c.out, "Retention policy %s removed %d item(s).\n", policy, removed)
	return nil
}

// executeSweep handles the 'clipvault sweep' command
func (c *CLI) executeSweep(ctx context.Context) error {
	removed, err := retention.NewReconciler(c.store, c.files, c.log).Sweep(ctx)
	if err != nil {
		return fmt.Errorf("orphan sweep failed: %w", err)
	}

	fmt.Fprintf(c.out, "Removed %d orphaned image file(s).\n", removed)
	return nil
}
