package html_test

import (
	"testing"

	"github.com/mvil/nox/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderString(t *testing.T) {
	t.Parallel()

	t.Run("keeps paragraphs and inline code", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString(`<p>Whether to enable <code class="literal">foo</code>.</p>
<p>Second   paragraph
   here.</p>`, html.Prose)

		require.NoError(t, err)
		assert.Equal(t, "Whether to enable `foo`.\n\nSecond paragraph here.", text)
	})

	t.Run("emits bare code in literal mode", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString(`<p><span class="emphasis"><em>Default:</em></span> <code class="literal">false</code></p>`, html.Literal)

		require.NoError(t, err)
		assert.Equal(t, "Default: false", text)
	})

	t.Run("keeps preformatted text verbatim", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString("<p>Example:</p><pre><code>{\n  a = 1;\n}</code></pre>", html.Literal)

		require.NoError(t, err)
		assert.Equal(t, "Example:\n\n{\n  a = 1;\n}", text)
	})

	t.Run("renders list items as lines", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString(`<p>Choices:</p><ul><li><p>one</p></li><li>two</li></ul>`, html.Prose)

		require.NoError(t, err)
		assert.Equal(t, "Choices:\n\n- one\n- two", text)
	})

	t.Run("renders nested inline markup as text", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString(`<p>See <a href="#opt-x"><em>the <strong>other</strong></em> option</a>.</p>`, html.Prose)

		require.NoError(t, err)
		assert.Equal(t, "See the other option.", text)
	})

	t.Run("keeps non-breaking spaces", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString("<p>Whether to enable&nbsp;Git.  </p><p>Port <code>80&nbsp;80</code></p>", html.Prose)

		require.NoError(t, err)
		assert.Equal(t, "Whether to enable\u00a0Git.\n\nPort `80\u00a080`", text)
	})

	t.Run("returns empty string for whitespace", func(t *testing.T) {
		t.Parallel()

		text, err := html.RenderString("  \n\t ", html.Prose)

		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

func TestText(t *testing.T) {
	t.Parallel()

	nodes, err := html.ParseFragment("<span> Type: </span>\n<em>boolean</em>")
	require.NoError(t, err)

	assert.Equal(t, "Type: boolean", html.Text(nodes))
}
