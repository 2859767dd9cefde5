package cli

import (
	"fmt"
	"strings"
)

// Args represents the top-level command structure
type Args struct {
	DataDir    *string `arg:"--data-dir" help:"Data directory (absolute, or relative to ~/.config/clipvault)"`
	ConfigPath *string `arg:"--config" help:"Config file (default ~/.config/clipvault/config.yaml)"`

	Watch    *WatchCmd    `arg:"subcommand:watch" help:"Record clipboard changes until interrupted"`
	Add      *AddCmd      `arg:"subcommand:add" help:"Add an item from stdin, a file or text"`
	List     *ListCmd     `arg:"subcommand:list" help:"List history, newest first"`
	Search   *SearchCmd   `arg:"subcommand:search" help:"Search history"`
	Show     *ShowCmd     `arg:"subcommand:show" help:"Print an item"`
	Thumb    *ThumbCmd    `arg:"subcommand:thumb" help:"Write an item's PNG thumbnail"`
	Fav      *FavCmd      `arg:"subcommand:fav" help:"Toggle an item's favorite flag"`
	Delete   *DeleteCmd   `arg:"subcommand:delete" help:"Delete an item"`
	Copy     *CopyCmd     `arg:"subcommand:copy" help:"Copy an item back to the clipboard"`
	Clear    *ClearCmd    `arg:"subcommand:clear" help:"Delete all non-favorite items"`
	Cleanup  *CleanupCmd  `arg:"subcommand:cleanup" help:"Apply the retention policy now"`
	Sweep    *SweepCmd    `arg:"subcommand:sweep" help:"Remove archived images no item references"`
	Config   *ConfigCmd   `arg:"subcommand:config" help:"Manage the config file"`
	Settings *SettingsCmd `arg:"subcommand:settings" help:"Manage runtime settings stored in the database"`
	Group    *GroupCmd    `arg:"subcommand:group" help:"Manage item groups"`
	Browse   *BrowseCmd   `arg:"subcommand:browse" help:"Browse history interactively (default)"`
}

// WatchCmd represents the 'clipvault watch' command
type WatchCmd struct {
	MetricsAddr string `arg:"--metrics-addr" help:"Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464"`
	NoSweep     bool   `arg:"--no-sweep" help:"Skip the orphan image sweep at startup"`
}

// AddCmd represents the 'clipvault add' command
type AddCmd struct {
	File   *string `arg:"positional" help:"File to add (reads stdin when omitted)"`
	Text   *string `arg:"-t,--text" help:"Add this text"`
	AsFile bool    `arg:"--as-file" help:"Record the file as a file reference instead of its contents"`
	HTML   bool    `arg:"--html" help:"Treat the input as HTML rich text"`
	Source string  `arg:"--source" help:"Originating application name"`
}

// ListCmd represents the 'clipvault list' command
type ListCmd struct {
	Type      string `arg:"--type" help:"Only items of this type (plain_text, rich_text, image, file)"`
	Favorites bool   `arg:"-f,--favorites" help:"Only favorited items"`
	Limit     int    `arg:"-n,--limit" default:"20" help:"Maximum items (0 for all)"`
	Offset    int    `arg:"--offset" help:"Items to skip"`
}

// SearchCmd represents the 'clipvault search' command
type SearchCmd struct {
	Query string `arg:"positional,required" help:"Text to search for"`
	Type  string `arg:"--type" help:"Only items of this type"`
	Limit int    `arg:"-n,--limit" default:"20" help:"Maximum results (0 for all)"`
}

// ShowCmd represents the 'clipvault show' command
type ShowCmd struct {
	ID   string `arg:"positional,required" help:"Item ID"`
	Info bool   `arg:"-i,--info" help:"Print metadata instead of content"`
	HTML bool   `arg:"--html" help:"Print the HTML of rich text items"`
}

// ThumbCmd represents the 'clipvault thumb' command
type ThumbCmd struct {
	ID     string  `arg:"positional,required" help:"Item ID"`
	Output *string `arg:"-o,--output" help:"Output file (stdout when omitted)"`
}

// FavCmd represents the 'clipvault fav' command
type FavCmd struct {
	ID string `arg:"positional,required" help:"Item ID"`
}

// DeleteCmd represents the 'clipvault delete' command
type DeleteCmd struct {
	IDs []string `arg:"positional,required" help:"Item IDs"`
}

// CopyCmd represents the 'clipvault copy' command
type CopyCmd struct {
	ID string `arg:"positional,required" help:"Item ID"`
}

// ClearCmd represents the 'clipvault clear' command
type ClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// CleanupCmd represents the 'clipvault cleanup' command
type CleanupCmd struct{}

// SweepCmd represents the 'clipvault sweep' command
type SweepCmd struct{}

// BrowseCmd represents the 'clipvault browse' command
type BrowseCmd struct{}

// ConfigCmd represents the 'clipvault config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get a configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set a configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
}

// ConfigGetCmd represents 'clipvault config get'
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

// ConfigSetCmd represents 'clipvault config set'
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

// ConfigListCmd represents 'clipvault config list'
type ConfigListCmd struct{}

// SettingsCmd represents the 'clipvault settings' command
type SettingsCmd struct {
	Get  *SettingsGetCmd  `arg:"subcommand:get" help:"Get a setting"`
	Set  *SettingsSetCmd  `arg:"subcommand:set" help:"Set a setting"`
	List *SettingsListCmd `arg:"subcommand:list" help:"List all settings"`
}

// SettingsGetCmd represents 'clipvault settings get'
type SettingsGetCmd struct {
	Key string `arg:"positional,required" help:"Setting key"`
}

// SettingsSetCmd represents 'clipvault settings set'
type SettingsSetCmd struct {
	Key   string `arg:"positional,required" help:"Setting key"`
	Value string `arg:"positional,required" help:"Setting value"`
}

// SettingsListCmd represents 'clipvault settings list'
type SettingsListCmd struct{}

// GroupCmd represents the 'clipvault group' command
type GroupCmd struct {
	Create *GroupCreateCmd `arg:"subcommand:create" help:"Create a group"`
	List   *GroupListCmd   `arg:"subcommand:list" help:"List groups"`
	Delete *GroupDeleteCmd `arg:"subcommand:delete" help:"Delete a group, keeping its items"`
	Add    *GroupItemCmd   `arg:"subcommand:add" help:"Add an item to a group"`
	Remove *GroupItemCmd   `arg:"subcommand:remove" help:"Remove an item from a group"`
	Items  *GroupItemsCmd  `arg:"subcommand:items" help:"List the items of a group"`
}

// GroupCreateCmd represents 'clipvault group create'
type GroupCreateCmd struct {
	Name string `arg:"positional,required" help:"Group name"`
}

// GroupListCmd represents 'clipvault group list'
type GroupListCmd struct{}

// GroupDeleteCmd represents 'clipvault group delete'
type GroupDeleteCmd struct {
	Group string `arg:"positional,required" help:"Group name or ID"`
}

// GroupItemCmd represents 'clipvault group add' and 'clipvault group remove'
type GroupItemCmd struct {
	Group string `arg:"positional,required" help:"Group name or ID"`
	ID    string `arg:"positional,required" help:"Item ID"`
}

// GroupItemsCmd represents 'clipvault group items'
type GroupItemsCmd struct {
	Group string `arg:"positional,required" help:"Group name or ID"`
	Limit int    `arg:"-n,--limit" help:"Maximum items (0 for all)"`
}

// Description returns the program description
func (Args) Description() string {
	return "clipvault - clipboard history with search, thumbnails and retention"
}

// Version returns the program version
func (Args) Version() string {
	return "clipvault 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  clipvault watch                      # Record clipboard changes
  echo "hello" | clipvault add         # Add from stdin
  clipvault add screenshot.png         # Add an image
  clipvault add --as-file report.pdf   # Add a file reference
  clipvault search "hello"             # Search history
  clipvault show <id>                  # Print an item
  clipvault settings set retention_policy count
  clipvault settings set retention_count 500
  clipvault                            # Interactive browser`
}

// HasCommand reports whether a subcommand was given
func (args *Args) HasCommand() bool {
	return args.Watch != nil || args.Add != nil || args.List != nil || args.Search != nil ||
		args.Show != nil || args.Thumb != nil || args.Fav != nil || args.Delete != nil ||
		args.Copy != nil || args.Clear != nil || args.Cleanup != nil || args.Sweep != nil ||
		args.Config != nil || args.Settings != nil || args.Group != nil || args.Browse != nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.Add != nil:
		return args.Add.Validate()
	case args.List != nil:
		return args.List.Validate()
	case args.Search != nil:
		return args.Search.Validate()
	case args.Config != nil:
		return args.Config.Validate()
	case args.Settings != nil:
		return args.Settings.Validate()
	case args.Group != nil:
		return args.Group.Validate()
	}
	return nil
}

// Validate validates add command arguments
func (a *AddCmd) Validate() error {
	if a.File != nil && a.Text != nil {
		return fmt.Errorf("cannot specify both a file and --text")
	}
	if a.AsFile && a.File == nil {
		return fmt.Errorf("--as-file requires a file")
	}
	if a.AsFile && a.HTML {
		return fmt.Errorf("cannot specify both --as-file and --html")
	}
	return nil
}

// Validate validates list command arguments
func (l *ListCmd) Validate() error {
	if l.Limit < 0 || l.Offset < 0 {
		return fmt.Errorf("limit and offset must be non-negative")
	}
	return nil
}

// Validate validates search command arguments
func (s *SearchCmd) Validate() error {
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if s.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	if c.Get == nil && c.Set == nil && c.List == nil {
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}

// Validate validates settings command arguments
func (s *SettingsCmd) Validate() error {
	if s.Get == nil && s.Set == nil && s.List == nil {
		return fmt.Errorf("no settings subcommand specified")
	}
	return nil
}

// Validate validates group command arguments
func (g *GroupCmd) Validate() error {
	if g.Create == nil && g.List == nil && g.Delete == nil && g.Add == nil && g.Remove == nil && g.Items == nil {
		return fmt.Errorf("no group subcommand specified")
	}
	if g.Create != nil && strings.TrimSpace(g.Create.Name) == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	return nil
}
