package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/mvil/nox"
	"github.com/mvil/nox/fs"
	"github.com/mvil/nox/toml"
)

// Corpora is the corpus service used by commands.
type Corpora interface {
	nox.CorpusService
	Load(ctx context.Context, id string) (nox.TabState, error)
	Refresh(ctx context.Context, id string) (nox.TabState, error)
}

// Cache is the cache inspection used by the sources and clear-cache commands.
type Cache interface {
	Stat(ctx context.Context, identity string) (*fs.EntryInfo, error)
	Delete(ctx context.Context, identity string) error
	Clear(ctx context.Context) error
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Config     *toml.Config
	ConfigPath string

	// Sources lists every configured source, disabled ones included.
	Sources []*nox.Source
	Corpora Corpora
	Cache   Cache // nil when caching is disabled
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"C" type:"path" help:"Configuration file (default $NOX_CONFIG or ~/.config/nox/nox.toml)"`

	Search        SearchCmd        `cmd:"" help:"Search the options of a source"`
	Sources       SourcesCmd       `cmd:"" help:"List sources and their cache state"`
	Refresh       RefreshCmd       `cmd:"" help:"Download sources again, ignoring the cache lifetime"`
	ClearCache    ClearCacheCmd    `cmd:"" name:"clear-cache" help:"Remove cached sources"`
	DefaultConfig DefaultConfigCmd `cmd:"" name:"default-config" help:"Print the default configuration"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query  []string `arg:"" optional:"" help:"Search terms"`
	Source string   `short:"s" default:"nixos" help:"Source to search"`
	Limit  int      `short:"n" default:"20" help:"Maximum results to show (0 for all)"`
	Long   bool     `short:"l" help:"Show description, default, example and declarations"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct{}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	IDs []string `arg:"" optional:"" name:"source" help:"Sources to refresh (default all enabled)"`
}

// ClearCacheCmd is the "clear-cache" subcommand.
type ClearCacheCmd struct {
	IDs []string `arg:"" optional:"" name:"source" help:"Sources to remove (default all)"`
}

// DefaultConfigCmd is the "default-config" subcommand.
type DefaultConfigCmd struct {
	Write bool `short:"w" help:"Write to the configuration file instead of printing"`
	Force bool `short:"f" help:"Overwrite an existing configuration file"`
}
