package nox

import (
	"fmt"
	"time"
)

// Configuration defaults shared by the loader and the default config renderer.
const (
	DefaultLogLevel     = "error"
	DefaultFetchTimeout = 60 * time.Second
	DefaultMaxResults   = 200
)

// ConfigOption documents one recognized configuration key.
type ConfigOption struct {
	// Key is the dotted TOML path, e.g. "sources.nixos.enabled".
	Key         string
	Default     any
	Description string
}

// ConfigOptions returns every recognized configuration key with its default,
// in the order a default configuration file lists them. Paths that depend on
// the environment have an empty default and are resolved at load time.
func ConfigOptions() []ConfigOption {
	opts := []ConfigOption{
		{"cache_dir", "", "Cache root; empty uses $NOX_CACHE or the user cache directory"},
		{"use_cache", true, "Persist parsed sources between runs"},
		{"auto_refresh", true, "Refresh cached sources older than their ttl"},
		{"cache_duration", DefaultTTL.String(), "Default ttl for sources"},
		{"fetch_timeout", DefaultFetchTimeout.String(), "Timeout for a single document download"},
		{"max_results", DefaultMaxResults, "Maximum results returned per query"},
		{"log_level", DefaultLogLevel, "One of debug, info, warn, error"},
		{"log_file", "", "Log destination; empty uses the user state directory"},
	}
	for _, s := range BuiltinSources() {
		prefix := "sources." + s.ID + "."
		opts = append(opts,
			ConfigOption{prefix + "enabled", s.Enabled, fmt.Sprintf("Show the %s tab", s.Name)},
			ConfigOption{prefix + "ttl", s.TTL.String(), "Cache lifetime for this source"},
			ConfigOption{prefix + "force_refresh", s.ForceRefresh, "Always download on startup"},
			ConfigOption{prefix + "custom_url", "", "Replace the documentation URL"},
			ConfigOption{prefix + "display_order", s.Order, "Tab position"},
		)
	}
	return opts
}
