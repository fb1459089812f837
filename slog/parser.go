package slog

import (
	"log/slog"
	"time"

	"github.com/mvil/nox"
)

// Ensure LoggingParser implements nox.Parser.
var _ nox.Parser = (*LoggingParser)(nil)

// LoggingParser wraps a Parser and logs every skipped entry.
type LoggingParser struct {
	next   nox.Parser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next nox.Parser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser. Each warning is logged once.
func (p *LoggingParser) Parse(data []byte, src *nox.Source) (*nox.ParseResult, error) {
	begin := time.Now()
	res, err := p.next.Parse(data, src)
	if err != nil {
		p.logger.Warn("parse",
			"source", src.ID,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}

	for _, w := range res.Warnings {
		p.logger.Warn("skipped entry",
			"source", src.ID,
			"index", w.Index,
			"term", w.Term,
			"reason", w.Reason,
		)
	}
	p.logger.Info("parse",
		"source", src.ID,
		"bytes", len(data),
		"records", len(res.Records),
		"skipped", len(res.Warnings),
		"duration", time.Since(begin),
	)
	return res, nil
}

// LogParsers wraps every parser in parsers with a LoggingParser.
func LogParsers(parsers nox.Parsers, logger *slog.Logger) nox.Parsers {
	out := make(nox.Parsers, len(parsers))
	for format, p := range parsers {
		out[format] = NewLoggingParser(p, logger.With("format", string(format)))
	}
	return out
}

// Ensure LoggingDetector implements nox.FormatDetector.
var _ nox.FormatDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a FormatDetector with logging of the detected format.
type LoggingDetector struct {
	next   nox.FormatDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next nox.FormatDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the result.
func (d *LoggingDetector) Detect(data []byte) nox.Format {
	begin := time.Now()
	format := d.next.Detect(data)
	d.logger.Info("format detection",
		"format", string(format),
		"duration", time.Since(begin),
	)
	return format
}
