package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mvil/nox"
	"github.com/mvil/nox/mock"
	noxslog "github.com/mvil/nox/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("logs each skipped entry once", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Parser{
			ParseFn: func(_ []byte, _ *nox.Source) (*nox.ParseResult, error) {
				return &nox.ParseResult{
					Records:  []*nox.Record{{Name: "a.enable"}},
					Warnings: []nox.ParseWarning{{Index: 1, Term: "broken", Reason: "missing type field"}},
				}, nil
			},
		}

		parser := noxslog.NewLoggingParser(inner, logger)
		res, err := parser.Parse([]byte("<html/>"), &nox.Source{ID: "nixos"})

		require.NoError(t, err)
		assert.Len(t, res.Records, 1)
		output := buf.String()
		assert.Equal(t, 1, strings.Count(output, "skipped entry"))
		assert.Contains(t, output, "term=broken")
		assert.Contains(t, output, "records=1")
		assert.Contains(t, output, "skipped=1")
	})

	t.Run("logs parse errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Parser{
			ParseFn: func(_ []byte, _ *nox.Source) (*nox.ParseResult, error) {
				return nil, errors.New("bad markup")
			},
		}

		parser := noxslog.NewLoggingParser(inner, logger)
		_, err := parser.Parse([]byte("<html/>"), &nox.Source{ID: "nixos"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"bad markup\"")
	})
}

func TestLogParsers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.Parser{
		ParseFn: func(_ []byte, _ *nox.Source) (*nox.ParseResult, error) {
			return &nox.ParseResult{Records: []*nox.Record{{Name: "a"}}}, nil
		},
	}

	parsers := noxslog.LogParsers(nox.Parsers{nox.FormatDocBook: inner}, logger)
	p, err := parsers.For(&nox.Source{Format: nox.FormatDocBook})
	require.NoError(t, err)

	_, err = p.Parse(nil, &nox.Source{ID: "nixos"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "format=docbook")
}

func TestLoggingDetector_Detect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.FormatDetector{
		DetectFn: func(_ []byte) nox.Format { return nox.FormatXHTML },
	}

	d := noxslog.NewLoggingDetector(inner, logger)

	assert.Equal(t, nox.FormatXHTML, d.Detect([]byte("<?xml?>")))
	assert.Contains(t, buf.String(), "format=xhtml")
}
