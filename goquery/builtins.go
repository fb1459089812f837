package goquery

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"github.com/mvil/nox"
	"github.com/mvil/nox/html"
)

var _ nox.Parser = (*BuiltinsParser)(nil)

// BuiltinsParser parses the Nix language built-in functions reference.
// Each function is a <dt> holding its signature followed by a <dd>
// with the description.
type BuiltinsParser struct{}

// NewBuiltinsParser creates a new BuiltinsParser.
func NewBuiltinsParser() *BuiltinsParser {
	return &BuiltinsParser{}
}

// Parse extracts one record per built-in. The record type holds the full
// call signature.
func (p *BuiltinsParser) Parse(data []byte, src *nox.Source) (*nox.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, nox.Errorf(nox.EPARSE, "failed to parse HTML: %v", err)
	}

	terms := topLevelTerms(doc)
	c, err := html.NewCollector(src, terms.Length())
	if err != nil {
		return nil, err
	}

	terms.Each(func(i int, dt *goquery.Selection) {
		anchor := termAnchor(dt)
		signature := html.Text(dt.Nodes)

		code := dt.Find("code").First()
		if code.Length() == 0 {
			if anchor != "" {
				c.Skip(i, signature, "term has no function name")
			}
			return
		}
		name := html.Text(code.Nodes)

		dd := dt.Next()
		if goquery.NodeName(dd) != "dd" {
			c.Skip(i, name, "term has no definition")
			return
		}

		c.Add(i, &nox.Record{
			Name:        name,
			Type:        signature,
			Description: html.Render(childNodes(dd), html.Prose),
			Anchor:      anchor,
		})
	})

	return c.Result()
}
