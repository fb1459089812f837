package html_test

import (
	"testing"

	"github.com/mvil/nox"
	"github.com/mvil/nox/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nginxEnable = `<p>Whether to enable <code class="literal">nginx</code>.</p>
<p><span class="emphasis"><em>Type:</em></span> boolean</p>
<p><span class="emphasis"><em>Default:</em></span> <code class="literal">false</code></p>
<p><span class="emphasis"><em>Example:</em></span> <code class="literal">true</code></p>
<p><span class="emphasis"><em>Declared by:</em></span></p>
<table><tbody><tr><td><a class="filename" href="https://github.com/NixOS/nixpkgs/blob/release-25.05/nixos/modules/services/web-servers/nginx/default.nix">&lt;nixpkgs/nixos/modules/services/web-servers/nginx/default.nix&gt;</a></td></tr></tbody></table>`

func TestSplitFields(t *testing.T) {
	t.Parallel()

	t.Run("renders every labelled section", func(t *testing.T) {
		t.Parallel()

		nodes, err := html.ParseFragment(nginxEnable)
		require.NoError(t, err)

		f := html.SplitFields(nodes)
		require.True(t, f.Marked)
		require.True(t, f.HasType())

		rec := f.Option("services.nginx.enable", "opt-services.nginx.enable")
		assert.Equal(t, &nox.Record{
			Name:        "services.nginx.enable",
			Anchor:      "opt-services.nginx.enable",
			Description: "Whether to enable `nginx`.",
			Type:        "boolean",
			Default:     "false",
			Example:     "true",
			DeclaredBy: []nox.Declaration{{
				Path: "<nixpkgs/nixos/modules/services/web-servers/nginx/default.nix>",
				URL:  "https://github.com/NixOS/nixpkgs/blob/release-25.05/nixos/modules/services/web-servers/nginx/default.nix",
			}},
		}, rec)
	})

	t.Run("falls back to lines for declarations without links", func(t *testing.T) {
		t.Parallel()

		nodes, err := html.ParseFragment(`<p><em>Type:</em> string</p>
<p><em>Declared by:</em></p>
<p>&lt;home-manager/modules/programs/git.nix&gt;</p>`)
		require.NoError(t, err)

		rec := html.SplitFields(nodes).Option("programs.git.userName", "")

		assert.Equal(t, "string", rec.Type)
		assert.Empty(t, rec.Description)
		assert.Equal(t, []nox.Declaration{{Path: "<home-manager/modules/programs/git.nix>"}}, rec.DeclaredBy)
	})

	t.Run("matches labels case-insensitively", func(t *testing.T) {
		t.Parallel()

		nodes, err := html.ParseFragment(`<p>Port.</p><p><em>TYPE:</em> 16 bit unsigned integer</p>`)
		require.NoError(t, err)

		f := html.SplitFields(nodes)

		assert.True(t, f.HasType())
		assert.Equal(t, "16 bit unsigned integer", f.Option("port", "").Type)
	})

	t.Run("keeps unemphasized labels in the description", func(t *testing.T) {
		t.Parallel()

		nodes, err := html.ParseFragment(`<p>Extra arguments.</p>
<p>Example: <code>--verbose</code> prints more.</p>
<p><span class="emphasis"><em>Type:</em></span> list of string</p>
<p><span class="emphasis"><em>Example:</em></span> <code>[ "--verbose" ]</code></p>`)
		require.NoError(t, err)

		rec := html.SplitFields(nodes).Option("services.foo.extraArgs", "")

		assert.Equal(t, "Extra arguments.\n\nExample: `--verbose` prints more.", rec.Description)
		assert.Equal(t, "list of string", rec.Type)
		assert.Equal(t, `[ "--verbose" ]`, rec.Example)
	})

	t.Run("ignores a label that does not open its paragraph", func(t *testing.T) {
		t.Parallel()

		nodes, err := html.ParseFragment(`<p>See <em>Type:</em> below.</p>`)
		require.NoError(t, err)

		f := html.SplitFields(nodes)

		assert.False(t, f.Marked)
		assert.Equal(t, "See Type: below.", f.Option("x", "").Description)
	})

	t.Run("leaves unlabelled definitions unmarked", func(t *testing.T) {
		t.Parallel()

		nodes, err := html.ParseFragment(`<p>Options for the services below.</p>`)
		require.NoError(t, err)

		f := html.SplitFields(nodes)

		assert.False(t, f.Marked)
		assert.False(t, f.HasType())
		assert.Equal(t, "Options for the services below.", f.Option("x", "").Description)
	})
}
