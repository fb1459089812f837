package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mvil/nox"
	"github.com/mvil/nox/corpus"
	"github.com/mvil/nox/etree"
	"github.com/mvil/nox/fs"
	"github.com/mvil/nox/fuzzy"
	"github.com/mvil/nox/goquery"
	noxhttp "github.com/mvil/nox/http"
	noxslog "github.com/mvil/nox/slog"
	"github.com/mvil/nox/toml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Fetcher replaces the HTTP fetcher. Set before calling Run().
	Fetcher nox.Fetcher

	// LogWriter replaces the configured log file. Set before calling Run().
	LogWriter io.Writer

	// RetryDelays replaces the fetch backoff. Set before calling Run().
	RetryDelays []time.Duration

	Config *toml.Config
	Cache  *fs.CacheStore

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("nox"),
		kong.Description("Search Nix configuration options offline."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'nox --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.ConfigPath, err = toml.ConfigPath(cli.Config)
	if err != nil {
		return err
	}

	// default-config must work even when the existing file is broken.
	if kongCtx.Command() == "default-config" {
		return kongCtx.Run(deps)
	}

	cfg, _, _, err := toml.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Run 'nox default-config' to see the recognized options\n")
		return err
	}
	m.Config = cfg
	deps.Config = cfg
	defer m.Close()

	logger, err := m.openLogger(cfg)
	if err != nil {
		return err
	}
	deps.Logger = logger

	if err := m.wire(deps, logger); err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// wire builds the corpus manager and its collaborators from the config.
func (m *Main) wire(deps *Dependencies, logger *slog.Logger) error {
	cfg := m.Config

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = noxhttp.NewFetcher(noxhttp.WithTimeout(cfg.FetchTimeout.Duration()))
	}
	fetcher = noxslog.NewLoggingFetcher(fetcher, logger)
	m.closers = append(m.closers, fetcher.Close)

	registry := goquery.NewRegistry(noxslog.NewLoggingDetector(goquery.NewDetector(), logger))
	registry.Register(nox.FormatXHTML, etree.NewParser())

	deps.Sources = cfg.SourceList()
	manager := corpus.NewManager(deps.Sources)
	manager.Fetcher = fetcher
	manager.Parsers = noxslog.LogParsers(registry.Parsers(), logger)
	manager.Versions = goquery.NewVersionExtractor()
	manager.Logger = logger
	manager.IndexOptions = []fuzzy.Option{fuzzy.WithLimit(cfg.MaxResults)}
	if m.RetryDelays != nil {
		manager.RetryDelays = m.RetryDelays
	}

	if cfg.UseCache {
		store, err := fs.NewCacheStore(cfg.CacheDir)
		if err != nil {
			return err
		}
		store.Logger = logger
		m.Cache = store
		m.closers = append(m.closers, store.Close)
		manager.Cache = noxslog.NewLoggingCacheStore(store, logger)
		deps.Cache = store
	}

	deps.Corpora = manager
	return nil
}

// openLogger returns a text logger writing to the configured log file.
func (m *Main) openLogger(cfg *toml.Config) (*slog.Logger, error) {
	w := m.LogWriter
	if w == nil {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		m.closers = append(m.closers, f.Close)
		w = f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()})), nil
}
