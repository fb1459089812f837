package nox

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Format identifies the markup structure of a documentation page and
// selects the parsing strategy for it.
type Format string

// Supported page formats.
const (
	// FormatDocBook is the HTML option list rendered by nixos-render-docs:
	// a <dl> of <dt> terms each followed by a <dd> with marked fields.
	FormatDocBook Format = "docbook"
	// FormatXHTML is the same structure served as well-formed XHTML.
	FormatXHTML Format = "xhtml"
	// FormatBuiltins is the Nix language built-ins reference.
	FormatBuiltins Format = "builtins"
	// FormatAuto detects one of the formats above from the fetched page.
	FormatAuto Format = "auto"
)

// VersionStrategy selects how a version string is extracted from a page.
type VersionStrategy string

// Supported version strategies.
const (
	VersionSubtitle        VersionStrategy = "subtitle"
	VersionTitleSemver     VersionStrategy = "title-semver"
	VersionSubtitleOrTitle VersionStrategy = "subtitle-or-title"
)

// DefaultTTL is the cache lifetime used when a source does not set one.
const DefaultTTL = 7 * 24 * time.Hour

// Rewrite replaces every match of Pattern in declaration URLs.
type Rewrite struct {
	Pattern string
	Replace string
}

// Source describes one documentation source. Sources are built from
// BuiltinSources plus user overrides and are not modified afterwards.
type Source struct {
	// ID is the stable identity key; it names the cache entry.
	ID   string
	Name string

	URL        string
	VersionURL string
	Version    VersionStrategy
	Format     Format
	DocBaseURL string
	Order      int

	Enabled      bool
	TTL          time.Duration
	ForceRefresh bool

	DeclarationRewrite *Rewrite
}

var identityRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidIdentity reports whether id can be used as a source identity.
func ValidIdentity(id string) bool {
	return identityRe.MatchString(id)
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if !ValidIdentity(s.ID) {
		return Errorf(EINVALID, "invalid source id %q", s.ID)
	}
	if s.Name == "" {
		return Errorf(EINVALID, "source %q: name required", s.ID)
	}
	if s.URL == "" {
		return Errorf(EINVALID, "source %q: url required", s.ID)
	}
	switch s.Format {
	case FormatDocBook, FormatXHTML, FormatBuiltins, FormatAuto:
	default:
		return Errorf(EINVALID, "source %q: unknown format %q", s.ID, s.Format)
	}
	if s.DeclarationRewrite != nil {
		if _, err := regexp.Compile(s.DeclarationRewrite.Pattern); err != nil {
			return Errorf(EINVALID, "source %q: invalid declaration rewrite: %v", s.ID, err)
		}
	}
	return nil
}

// ProbeURL returns the page the version is read from.
func (s *Source) ProbeURL() string {
	if s.VersionURL != "" {
		return s.VersionURL
	}
	return s.URL
}

// SeparateProbe reports whether the version lives on a different page than
// the option data.
func (s *Source) SeparateProbe() bool {
	return s.VersionURL != "" && s.VersionURL != s.URL
}

// DocURL returns the documentation link for a record of this source.
func (s *Source) DocURL(r *Record) string {
	base := s.DocBaseURL
	if base == "" {
		base = s.URL
	}
	base = strings.TrimSpace(base)
	if r == nil || r.Anchor == "" {
		return base
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + "#" + r.Anchor
}

func (s *Source) String() string {
	return s.Name
}

// BuiltinSources returns the default documentation sources in display order.
// Each call returns fresh copies.
func BuiltinSources() []*Source {
	homeManagerVersion := "https://nix-community.github.io/home-manager/"
	sources := []*Source{
		{
			ID:      "nix-darwin",
			Name:    "Nix-Darwin",
			URL:     "https://nix-darwin.github.io/nix-darwin/manual/index.html",
			Version: VersionSubtitleOrTitle,
			Format:  FormatDocBook,
		},
		{
			ID:         "nixos",
			Name:       "NixOS",
			URL:        "https://nixos.org/manual/nixos/stable/options",
			VersionURL: "https://nixos.org/manual/nixos/stable/",
			Version:    VersionSubtitleOrTitle,
			Format:     FormatDocBook,
		},
		{
			ID:         "nixos-unstable",
			Name:       "NixOS Unstable",
			URL:        "https://nixos.org/manual/nixos/unstable/options",
			VersionURL: "https://nixos.org/manual/nixos/unstable/",
			Version:    VersionSubtitleOrTitle,
			Format:     FormatDocBook,
			DeclarationRewrite: &Rewrite{
				Pattern: `release-\d{2}\.\d{2}`,
				Replace: "nixos-unstable",
			},
		},
		{
			ID:         "home-manager",
			Name:       "Home Manager",
			URL:        "https://nix-community.github.io/home-manager/options.xhtml",
			VersionURL: homeManagerVersion,
			Version:    VersionSubtitleOrTitle,
			Format:     FormatXHTML,
		},
		{
			ID:         "home-manager-nixos",
			Name:       "Home Manager NixOS",
			URL:        "https://nix-community.github.io/home-manager/nixos-options.xhtml",
			VersionURL: homeManagerVersion,
			Version:    VersionSubtitleOrTitle,
			Format:     FormatXHTML,
		},
		{
			ID:         "home-manager-nix-darwin",
			Name:       "Home Manager Nix-Darwin",
			URL:        "https://nix-community.github.io/home-manager/nix-darwin-options.xhtml",
			VersionURL: homeManagerVersion,
			Version:    VersionSubtitleOrTitle,
			Format:     FormatXHTML,
		},
		{
			ID:      "nix-builtins",
			Name:    "Nix Built-ins",
			URL:     "https://nix.dev/manual/nix/2.28/language/builtins.html",
			Version: VersionTitleSemver,
			Format:  FormatBuiltins,
		},
	}
	for i, s := range sources {
		s.Order = i
		s.Enabled = true
		s.TTL = DefaultTTL
	}
	return sources
}

// SourceOverride carries user configuration for one source. Nil fields keep
// the default.
type SourceOverride struct {
	Enabled      *bool
	TTL          *time.Duration
	ForceRefresh *bool
	CustomURL    *string
	DisplayOrder *int
}

// ApplyOverrides returns copies of sources with the overrides applied,
// sorted by display order. Sources with equal order keep their relative order.
func ApplyOverrides(sources []*Source, overrides map[string]SourceOverride) []*Source {
	out := make([]*Source, 0, len(sources))
	for _, s := range sources {
		c := *s
		if o, ok := overrides[s.ID]; ok {
			if o.Enabled != nil {
				c.Enabled = *o.Enabled
			}
			if o.TTL != nil {
				c.TTL = *o.TTL
			}
			if o.ForceRefresh != nil {
				c.ForceRefresh = *o.ForceRefresh
			}
			if o.CustomURL != nil && *o.CustomURL != "" && *o.CustomURL != c.URL {
				if c.DocBaseURL == "" {
					c.DocBaseURL = *o.CustomURL
				}
				// The default version page describes the default URL, so the
				// version is read from the custom page itself.
				c.URL = *o.CustomURL
				c.VersionURL = ""
			}
			if o.DisplayOrder != nil {
				c.Order = *o.DisplayOrder
			}
		}
		out = append(out, &c)
	}
	slices.SortStableFunc(out, func(a, b *Source) int {
		return a.Order - b.Order
	})
	return out
}

// FindSource returns the source with the given id.
func FindSource(sources []*Source, id string) (*Source, bool) {
	for _, s := range sources {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}
