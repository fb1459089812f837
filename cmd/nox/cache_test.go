package main_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/mvil/nox"
	main "github.com/mvil/nox/cmd/nox"
	"github.com/mvil/nox/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *fs.CacheStore {
	t.Helper()
	store, err := fs.NewCacheStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store *fs.CacheStore, id, version string, n int) {
	t.Helper()
	entry := &nox.CacheEntry{Identity: id, Version: version, FetchedAt: time.Now().Add(-2 * time.Hour)}
	if src, ok := nox.FindSource(nox.BuiltinSources(), id); ok {
		entry.URL = src.URL
	}
	for range n {
		entry.Records = append(entry.Records, &nox.Record{Name: "opt", Type: "int"})
	}
	require.NoError(t, store.Put(context.Background(), entry))
}

func TestSourcesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists sources with cache state", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		seed(t, store, "nixos", "25.05", 1234)
		require.NoError(t, os.WriteFile(store.Path("nix-darwin"), []byte("garbage"), 0o644))

		sources := nox.BuiltinSources()
		sources[0].Enabled = false
		stdout := &bytes.Buffer{}

		err := (&main.SourcesCmd{}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{},
			Sources: sources, Cache: store,
		})

		require.NoError(t, err)
		out := stdout.String()
		for _, s := range sources {
			assert.Contains(t, out, s.ID)
		}
		assert.Contains(t, out, "25.05")
		assert.Contains(t, out, "1,234")
		assert.Contains(t, out, "2 hours ago")
		assert.Contains(t, out, "corrupt")
		assert.Contains(t, out, "never")
		assert.Contains(t, out, "7d")
	})

	t.Run("marks entries fetched from another URL", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		seed(t, store, "nixos", "25.05", 10)

		mirror := "https://mirror.test/options.html"
		sources := nox.ApplyOverrides(nox.BuiltinSources(), map[string]nox.SourceOverride{
			"nixos": {CustomURL: &mirror},
		})
		stdout := &bytes.Buffer{}

		err := (&main.SourcesCmd{}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{},
			Sources: sources, Cache: store,
		})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "other URL")
		assert.NotContains(t, stdout.String(), "2 hours ago")
	})

	t.Run("notes when caching is disabled", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}

		err := (&main.SourcesCmd{}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{},
			Sources: nox.BuiltinSources(),
		})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "nix-builtins")
		assert.Contains(t, stdout.String(), "Caching is disabled.")
	})
}

func TestClearCacheCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("clears every entry", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		seed(t, store, "nixos", "25.05", 1)
		seed(t, store, "nix-darwin", "25.05", 1)
		stdout := &bytes.Buffer{}

		err := (&main.ClearCacheCmd{}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{},
			Sources: nox.BuiltinSources(), Cache: store,
		})

		require.NoError(t, err)
		for _, id := range []string{"nixos", "nix-darwin"} {
			entry, err := store.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Nil(t, entry)
		}
		assert.Contains(t, stdout.String(), "Cleared all")
	})

	t.Run("clears selected entries", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		seed(t, store, "nixos", "25.05", 1)
		seed(t, store, "nix-darwin", "25.05", 1)

		err := (&main.ClearCacheCmd{IDs: []string{"nixos"}}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{},
			Sources: nox.BuiltinSources(), Cache: store,
		})

		require.NoError(t, err)
		gone, err := store.Get(context.Background(), "nixos")
		require.NoError(t, err)
		assert.Nil(t, gone)
		kept, err := store.Get(context.Background(), "nix-darwin")
		require.NoError(t, err)
		assert.NotNil(t, kept)
	})

	t.Run("rejects an unknown source", func(t *testing.T) {
		t.Parallel()

		err := (&main.ClearCacheCmd{IDs: []string{"nixpkgs"}}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{},
			Sources: nox.BuiltinSources(), Cache: newStore(t),
		})

		assert.Equal(t, nox.ENOTFOUND, nox.ErrorCode(err))
	})

	t.Run("does nothing when caching is disabled", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}

		err := (&main.ClearCacheCmd{}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{},
		})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "nothing to clear")
	})
}
