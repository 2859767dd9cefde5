package cli

import (
	"context"
	"fmt"

	"github.com/yiblet/clipvault/internal/store"
)

// executeGroup handles the 'clipvault group' command
func (c *CLI) executeGroup(ctx context.Context, cmd *GroupCmd) error {
	groups := c.store.Groups()

	switch {
	case cmd.Create != nil:
		group, err := groups.CreateGroup(ctx, cmd.Create.Name)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		fmt.Fprintf(c.out, "Created group %s (%s)\n", group.Name, group.ID)
		return nil

	case cmd.List != nil:
		all, err := groups.ListGroups(ctx)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		if len(all) == 0 {
			fmt.Fprintln(c.out, "No groups.")
			return nil
		}
		for _, g := range all {
			fmt.Fprintf(c.out, "%s  %s\n", g.ID, g.Name)
		}
		return nil

	case cmd.Delete != nil:
		group, err := c.findGroup(ctx, cmd.Delete.Group)
		if err != nil {
			return err
		}
		if err := groups.DeleteGroup(ctx, group.ID); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		fmt.Fprintf(c.out, "Deleted group %s\n", group.Name)
		return nil

	case cmd.Add != nil:
		group, err := c.findGroup(ctx, cmd.Add.Group)
		if err != nil {
			return err
		}
		if err := groups.AddItem(ctx, group.ID, cmd.Add.ID); err != nil {
			return fmt.Errorf("failed to add item to group: %w", err)
		}
		fmt.Fprintf(c.out, "Added %s to %s\n", cmd.Add.ID, group.Name)
		return nil

	case cmd.Remove != nil:
		group, err := c.findGroup(ctx, cmd.Remove.Group)
		if err != nil {
			return err
		}
		if err := groups.RemoveItem(ctx, group.ID, cmd.Remove.ID); err != nil {
			return fmt.Errorf("failed to remove item from group: %w", err)
		}
		fmt.Fprintf(c.out, "Removed %s from %s\n", cmd.Remove.ID, group.Name)
		return nil

	default:
		group, err := c.findGroup(ctx, cmd.Items.Group)
		if err != nil {
			return err
		}
		items, err := groups.Items(ctx, group.ID, store.ListQuery{Limit: cmd.Items.Limit})
		if err != nil {
			return fmt.Errorf("failed to list group items: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintf(c.out, "Group %s is empty.\n", group.Name)
			return nil
		}
		return c.printItems(items)
	}
}

// findGroup resolves a group by ID or name
func (c *CLI) findGroup(ctx context.Context, ref string) (*store.Group, error) {
	all, err := c.store.Groups().ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	for _, g := range all {
		if g.ID == ref || g.Name == ref {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group %s: %w", ref, store.ErrNotFound)
}
