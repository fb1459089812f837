// Package toml loads the user configuration file and renders the default one.
package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvil/nox"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted by Load.
const (
	EnvConfig = "NOX_CONFIG"
	EnvCache  = "NOX_CACHE"
)

// Duration is a time.Duration written as a Go duration string, e.g. "168h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// SourceConfig overrides one builtin or custom source. Unset keys keep the
// default.
type SourceConfig struct {
	Enabled      *bool     `toml:"enabled"`
	TTL          *Duration `toml:"ttl"`
	ForceRefresh *bool     `toml:"force_refresh"`
	CustomURL    *string   `toml:"custom_url"`
	DisplayOrder *int      `toml:"display_order"`
}

// CustomSource is a user-added documentation source.
type CustomSource struct {
	ID           string    `toml:"id"`
	Name         string    `toml:"name"`
	URL          string    `toml:"url"`
	VersionURL   string    `toml:"version_url"`
	Version      string    `toml:"version"`
	Format       string    `toml:"format"`
	DocBaseURL   string    `toml:"doc_base_url"`
	TTL          *Duration `toml:"ttl"`
	Enabled      *bool     `toml:"enabled"`
	ForceRefresh bool      `toml:"force_refresh"`
	DisplayOrder *int      `toml:"display_order"`
}

// Config is the contents of the configuration file.
type Config struct {
	CacheDir      string   `toml:"cache_dir"`
	UseCache      bool     `toml:"use_cache"`
	AutoRefresh   bool     `toml:"auto_refresh"`
	CacheDuration Duration `toml:"cache_duration"`
	FetchTimeout  Duration `toml:"fetch_timeout"`
	MaxResults    int      `toml:"max_results"`
	LogLevel      string   `toml:"log_level"`
	LogFile       string   `toml:"log_file"`

	Sources       map[string]SourceConfig `toml:"sources"`
	CustomSources []CustomSource          `toml:"custom_sources"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		UseCache:      true,
		AutoRefresh:   true,
		CacheDuration: Duration(nox.DefaultTTL),
		FetchTimeout:  Duration(nox.DefaultFetchTimeout),
		MaxResults:    nox.DefaultMaxResults,
		LogLevel:      nox.DefaultLogLevel,
	}
}

// DefaultConfigPath returns the configuration file location used when
// neither a path nor NOX_CONFIG is given.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "nox", "nox.toml"), nil
}

// Load locates, parses, normalizes and validates the configuration file.
// It returns the resolved path and whether the file exists; a missing file
// yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, "", false, nox.WrapError(nox.EINVALID, "parse config "+resolved, decodeError(err))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// decodeError flattens go-toml errors into a single line with the position.
func decodeError(err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return fmt.Errorf("line %d column %d: %s", row, col, derr.Error())
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) {
		keys := make([]string, 0, len(serr.Errors))
		for _, e := range serr.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return err
}

// ConfigPath returns the configuration file location: path when set, else
// NOX_CONFIG, else DefaultConfigPath. The file need not exist.
func ConfigPath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	return expandPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	expanded, err := ConfigPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, nox.Errorf(nox.EINVALID, "config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error

	if v := strings.TrimSpace(os.Getenv(EnvCache)); v != "" {
		c.CacheDir = v
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve cache directory: %w", err)
		}
		c.CacheDir = filepath.Join(base, "nox")
	}
	if c.CacheDir, err = expandPath(c.CacheDir); err != nil {
		return fmt.Errorf("cache_dir: %w", err)
	}

	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = defaultLogFile()
	}
	if c.LogFile, err = expandPath(c.LogFile); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = nox.DefaultLogLevel
	}
	if c.CacheDuration == 0 {
		c.CacheDuration = Duration(nox.DefaultTTL)
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(nox.DefaultFetchTimeout)
	}
	if c.MaxResults == 0 {
		c.MaxResults = nox.DefaultMaxResults
	}

	for i := range c.CustomSources {
		cs := &c.CustomSources[i]
		cs.ID = strings.TrimSpace(cs.ID)
		cs.URL = strings.TrimSpace(cs.URL)
		if cs.Name == "" {
			cs.Name = cs.ID
		}
		if cs.Format == "" {
			cs.Format = string(nox.FormatAuto)
		}
		if cs.Version == "" {
			cs.Version = string(nox.VersionSubtitleOrTitle)
		}
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxResults < 0 {
		return nox.Errorf(nox.EINVALID, "max_results must be positive")
	}
	if c.FetchTimeout < 0 {
		return nox.Errorf(nox.EINVALID, "fetch_timeout must be positive")
	}

	builtins := nox.BuiltinSources()
	known := make(map[string]bool, len(builtins)+len(c.CustomSources))
	for _, s := range builtins {
		known[s.ID] = true
	}
	for _, cs := range c.CustomSources {
		if known[cs.ID] {
			return nox.Errorf(nox.EINVALID, "custom source %q duplicates an existing source", cs.ID)
		}
		switch nox.VersionStrategy(cs.Version) {
		case nox.VersionSubtitle, nox.VersionTitleSemver, nox.VersionSubtitleOrTitle:
		default:
			return nox.Errorf(nox.EINVALID, "custom source %q: unknown version strategy %q", cs.ID, cs.Version)
		}
		if err := cs.source(0, 0).Validate(); err != nil {
			return err
		}
		known[cs.ID] = true
	}
	for id := range c.Sources {
		if !known[id] {
			return nox.Errorf(nox.EINVALID, "sources.%s: unknown source", id)
		}
	}
	return nil
}

// SourceList returns the builtin and custom sources with the configured
// overrides applied, in display order. Disabled sources are included.
func (c *Config) SourceList() []*nox.Source {
	sources := nox.BuiltinSources()
	for _, s := range sources {
		s.TTL = time.Duration(c.CacheDuration)
	}
	for _, cs := range c.CustomSources {
		sources = append(sources, cs.source(len(sources), time.Duration(c.CacheDuration)))
	}

	overrides := make(map[string]nox.SourceOverride, len(c.Sources))
	for id, sc := range c.Sources {
		o := nox.SourceOverride{
			Enabled:      sc.Enabled,
			ForceRefresh: sc.ForceRefresh,
			CustomURL:    sc.CustomURL,
			DisplayOrder: sc.DisplayOrder,
		}
		if sc.TTL != nil {
			ttl := time.Duration(*sc.TTL)
			o.TTL = &ttl
		}
		overrides[id] = o
	}

	out := nox.ApplyOverrides(sources, overrides)
	if !c.AutoRefresh {
		// Cached entries never expire; only missing entries are downloaded.
		for _, s := range out {
			s.TTL = 0
		}
	}
	return out
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func (cs CustomSource) source(order int, ttl time.Duration) *nox.Source {
	s := &nox.Source{
		ID:           cs.ID,
		Name:         cs.Name,
		URL:          cs.URL,
		VersionURL:   cs.VersionURL,
		Version:      nox.VersionStrategy(cs.Version),
		Format:       nox.Format(cs.Format),
		DocBaseURL:   cs.DocBaseURL,
		Order:        order,
		Enabled:      true,
		TTL:          ttl,
		ForceRefresh: cs.ForceRefresh,
	}
	if cs.Enabled != nil {
		s.Enabled = *cs.Enabled
	}
	if cs.TTL != nil {
		s.TTL = time.Duration(*cs.TTL)
	}
	if cs.DisplayOrder != nil {
		s.Order = *cs.DisplayOrder
	}
	return s
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "":
		return slog.LevelError, nil
	}
	return slog.LevelError, nox.Errorf(nox.EINVALID, "log_level must be one of debug, info, warn, error (got %q)", s)
}

func defaultLogFile() string {
	if base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); base != "" {
		return filepath.Join(base, "nox", "nox.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nox.log")
	}
	return filepath.Join(home, ".local", "state", "nox", "nox.log")
}

func expandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if p == "~" {
			p = home
		} else if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}
