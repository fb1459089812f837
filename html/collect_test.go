package html_test

import (
	"testing"

	"github.com/mvil/nox"
	"github.com/mvil/nox/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Parallel()

	t.Run("keeps records in order and warns about rejects", func(t *testing.T) {
		t.Parallel()

		c, err := html.NewCollector(&nox.Source{ID: "nixos"}, 4)
		require.NoError(t, err)

		c.Add(0, &nox.Record{Name: "a", Type: "int"})
		c.Add(1, &nox.Record{Name: "b", Type: "int"})
		c.Add(2, &nox.Record{Name: "a", Type: "string"})
		c.Add(3, &nox.Record{Name: " ", Type: "int"})
		c.Skip(4, "c", "missing type field")

		res, err := c.Result()
		require.NoError(t, err)

		require.Len(t, res.Records, 2)
		assert.Equal(t, "a", res.Records[0].Name)
		assert.Equal(t, "int", res.Records[0].Type)
		assert.Equal(t, "b", res.Records[1].Name)
		assert.Equal(t, []nox.ParseWarning{
			{Index: 2, Term: "a", Reason: "duplicate option name"},
			{Index: 3, Term: " ", Reason: "record name required"},
			{Index: 4, Term: "c", Reason: "missing type field"},
		}, res.Warnings)
	})

	t.Run("rewrites declaration URLs", func(t *testing.T) {
		t.Parallel()

		src := &nox.Source{
			ID:                 "nixos-unstable",
			DeclarationRewrite: &nox.Rewrite{Pattern: `release-\d{2}\.\d{2}`, Replace: "nixos-unstable"},
		}
		c, err := html.NewCollector(src, 1)
		require.NoError(t, err)

		c.Add(0, &nox.Record{Name: "a", DeclaredBy: []nox.Declaration{{
			Path: "<nixpkgs/nixos/modules/a.nix>",
			URL:  "https://github.com/NixOS/nixpkgs/blob/release-25.05/nixos/modules/a.nix",
		}}})

		res, err := c.Result()
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/NixOS/nixpkgs/blob/nixos-unstable/nixos/modules/a.nix", res.Records[0].DeclaredBy[0].URL)
		assert.Equal(t, "<nixpkgs/nixos/modules/a.nix>", res.Records[0].DeclaredBy[0].Path)
	})

	t.Run("fails without records", func(t *testing.T) {
		t.Parallel()

		c, err := html.NewCollector(&nox.Source{ID: "nixos"}, 0)
		require.NoError(t, err)
		c.Skip(0, "x", "missing type field")

		_, err = c.Result()

		assert.Equal(t, nox.EPARSE, nox.ErrorCode(err))
		assert.Contains(t, nox.ErrorMessage(err), "1 entries skipped")
	})

	t.Run("rejects an invalid rewrite pattern", func(t *testing.T) {
		t.Parallel()

		_, err := html.NewCollector(&nox.Source{ID: "x", DeclarationRewrite: &nox.Rewrite{Pattern: "("}}, 1)

		assert.Equal(t, nox.EINVALID, nox.ErrorCode(err))
	})
}
