package goquery_test

import (
	"testing"

	"github.com/mvil/nox"
	"github.com/mvil/nox/goquery"
	"github.com/mvil/nox/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	t.Run("detects docbook option lists", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()
		assert.Equal(t, nox.FormatDocBook, d.Detect(readFixture(t, "nixos-options.html")))
	})

	t.Run("detects the built-ins reference", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()
		assert.Equal(t, nox.FormatBuiltins, d.Detect(readFixture(t, "nix-builtins.html")))
	})

	t.Run("detects XHTML documents", func(t *testing.T) {
		t.Parallel()

		data := []byte(`<?xml version="1.0" encoding="utf-8" standalone="no"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><dl></dl></body></html>`)

		d := goquery.NewDetector()
		assert.Equal(t, nox.FormatXHTML, d.Detect(data))
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("registers goquery parsers", func(t *testing.T) {
		t.Parallel()

		r := goquery.NewRegistry(goquery.NewDetector())

		assert.NotNil(t, r.Get(nox.FormatDocBook))
		assert.NotNil(t, r.Get(nox.FormatBuiltins))
		assert.Nil(t, r.Get(nox.FormatXHTML))
	})

	t.Run("serves auto format through detection", func(t *testing.T) {
		t.Parallel()

		var parsed []byte
		xhtml := &mock.Parser{
			ParseFn: func(data []byte, _ *nox.Source) (*nox.ParseResult, error) {
				parsed = data
				return &nox.ParseResult{Records: []*nox.Record{{Name: "programs.git.enable"}}}, nil
			},
		}
		detector := &mock.FormatDetector{
			DetectFn: func(_ []byte) nox.Format { return nox.FormatXHTML },
		}

		r := goquery.NewRegistry(detector)
		r.Register(nox.FormatXHTML, xhtml)

		parser, err := r.Parsers().For(&nox.Source{Format: nox.FormatAuto})
		require.NoError(t, err)

		res, err := parser.Parse([]byte("<html/>"), &nox.Source{ID: "custom"})

		require.NoError(t, err)
		assert.Equal(t, []byte("<html/>"), parsed)
		assert.Equal(t, "programs.git.enable", res.Records[0].Name)
	})

	t.Run("returns EINVALID for undetectable format without parser", func(t *testing.T) {
		t.Parallel()

		detector := &mock.FormatDetector{
			DetectFn: func(_ []byte) nox.Format { return nox.FormatXHTML },
		}

		r := goquery.NewRegistry(detector)
		_, err := r.Parse([]byte("<html/>"), &nox.Source{ID: "custom"})

		assert.Equal(t, nox.EINVALID, nox.ErrorCode(err))
	})

	t.Run("parses detected built-ins page", func(t *testing.T) {
		t.Parallel()

		r := goquery.NewRegistry(goquery.NewDetector())
		res, err := r.Parse(readFixture(t, "nix-builtins.html"), builtinsSource())

		require.NoError(t, err)
		assert.Len(t, res.Records, 3)
	})
}
