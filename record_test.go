package nox_test

import (
	"testing"
	"time"

	"github.com/mvil/nox"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&nox.Record{Name: "services.nginx.enable"}).Validate())
	assert.Equal(t, nox.EINVALID, nox.ErrorCode((&nox.Record{Name: "  "}).Validate()))
	assert.Equal(t, nox.EINVALID, nox.ErrorCode((&nox.Record{Name: "a\nb"}).Validate()))
}

func TestRecord_Paths(t *testing.T) {
	t.Parallel()

	r := &nox.Record{DeclaredBy: []nox.Declaration{
		{Path: "<nixpkgs/nixos/modules/a.nix>", URL: "https://github.com/NixOS/nixpkgs/blob/master/nixos/modules/a.nix"},
		{Path: "<nixpkgs/nixos/modules/b.nix>"},
	}}

	assert.Equal(t, []string{"<nixpkgs/nixos/modules/a.nix>", "<nixpkgs/nixos/modules/b.nix>"}, r.Paths())
	assert.Empty(t, (&nox.Record{}).Paths())
}

func TestCorpus_Lookup(t *testing.T) {
	t.Parallel()

	c := &nox.Corpus{Records: []*nox.Record{{Name: "a"}, {Name: "b"}}}

	r, ok := c.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "b", r.Name)

	_, ok = c.Lookup("c")
	assert.False(t, ok)

	var empty *nox.Corpus
	assert.Zero(t, empty.Len())
	_, ok = empty.Lookup("a")
	assert.False(t, ok)
}

func TestCacheEntry_Fresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	e := &nox.CacheEntry{FetchedAt: now.Add(-2 * time.Hour)}

	assert.Equal(t, 2*time.Hour, e.Age(now))
	assert.True(t, e.Fresh(3*time.Hour, now))
	assert.False(t, e.Fresh(2*time.Hour, now))
	assert.False(t, e.Fresh(time.Hour, now))
	assert.True(t, e.Fresh(0, now), "zero ttl never expires")
	assert.True(t, e.Fresh(-time.Hour, now))
}

func TestState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "probing_version", nox.StateProbingVersion.String())
	assert.Equal(t, "ready_stale", nox.StateReadyStale.String())
	assert.Equal(t, "unknown", nox.State(42).String())

	for _, s := range []nox.State{nox.StateReady, nox.StateReadyStale, nox.StateFailed} {
		assert.True(t, s.Settled(), s.String())
	}
	for _, s := range []nox.State{nox.StateIdle, nox.StateProbingVersion, nox.StateCacheHit, nox.StateFetching, nox.StateParsing, nox.StatePersisting} {
		assert.False(t, s.Settled(), s.String())
	}
}

func TestParsers_For(t *testing.T) {
	t.Parallel()

	p := nox.Parsers{nox.FormatDocBook: nil}

	_, err := p.For(&nox.Source{Format: nox.FormatDocBook})
	assert.Equal(t, nox.EINVALID, nox.ErrorCode(err), "nil parser")

	_, err = p.For(&nox.Source{Format: nox.FormatXHTML})
	assert.Equal(t, nox.EINVALID, nox.ErrorCode(err))
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	opts := nox.ConfigOptions()

	seen := make(map[string]bool)
	for _, o := range opts {
		assert.False(t, seen[o.Key], "duplicate key %s", o.Key)
		seen[o.Key] = true
		assert.NotEmpty(t, o.Description, o.Key)
	}
	for _, s := range nox.BuiltinSources() {
		for _, k := range []string{"enabled", "ttl", "force_refresh", "custom_url", "display_order"} {
			assert.True(t, seen["sources."+s.ID+"."+k], "sources.%s.%s", s.ID, k)
		}
	}
	assert.True(t, seen["cache_dir"])
	assert.True(t, seen["log_level"])
}
