package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mvil/nox"
	"github.com/mvil/nox/html"
	xhtml "golang.org/x/net/html"
)

var _ nox.Parser = (*DocBookParser)(nil)

// DocBookParser parses option lists rendered as HTML definition lists, as
// produced for the NixOS and nix-darwin manuals.
type DocBookParser struct{}

// NewDocBookParser creates a new DocBookParser.
func NewDocBookParser() *DocBookParser {
	return &DocBookParser{}
}

// Parse extracts one record per option term in document order.
func (p *DocBookParser) Parse(data []byte, src *nox.Source) (*nox.ParseResult, error) {
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
		name := optionName(dt)

		dd := dt.Next()
		if goquery.NodeName(dd) != "dd" {
			if anchor == "" {
				return
			}
			c.Skip(i, name, "term has no definition")
			return
		}

		fields := html.SplitFields(childNodes(dd))
		if anchor == "" && !fields.Marked {
			// Section header.
			return
		}
		if name == "" {
			c.Skip(i, name, "empty option name")
			return
		}
		if !fields.HasType() {
			c.Skip(i, name, "missing type field")
			return
		}
		c.Add(i, fields.Option(name, anchor))
	})

	return c.Result()
}

// topLevelTerms returns every <dt> that is not nested inside a definition.
func topLevelTerms(doc *goquery.Document) *goquery.Selection {
	return doc.Find("dt").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered("dd").Length() == 0
	})
}

// optionName prefers the option code element and falls back to the whole term.
func optionName(dt *goquery.Selection) string {
	if code := dt.Find("code.option").First(); code.Length() > 0 {
		if name := html.Text(code.Nodes); name != "" {
			return name
		}
	}
	return html.Text(dt.Nodes)
}

// termAnchor returns the fragment identifying the term on its page.
func termAnchor(dt *goquery.Selection) string {
	if id, ok := dt.Find("a[id]").First().Attr("id"); ok && id != "" {
		return id
	}
	if id, ok := dt.Attr("id"); ok && id != "" {
		return id
	}
	if href, ok := dt.Find("a[href]").First().Attr("href"); ok {
		if _, frag, found := strings.Cut(href, "#"); found {
			return frag
		}
	}
	return ""
}

func childNodes(s *goquery.Selection) []*xhtml.Node {
	if s.Length() == 0 {
		return nil
	}
	var nodes []*xhtml.Node
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}
