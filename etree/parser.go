// Package etree parses option pages served as XHTML, such as the Home
// Manager manual, using the beevik/etree XML tree.
package etree

import (
	"encoding/xml"
	"strings"

	"github.com/beevik/etree"
	"github.com/mvil/nox"
	"github.com/mvil/nox/html"
	xhtml "golang.org/x/net/html"
)

var _ nox.Parser = (*Parser)(nil)

// Parser parses XHTML option lists. The page structure matches the HTML
// option lists: <dt> terms each followed by a <dd> with marked fields.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts one record per option term in document order.
func (p *Parser) Parse(data []byte, src *nox.Source) (*nox.ParseResult, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Permissive: true,
		Entity:     xml.HTMLEntity,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nox.Errorf(nox.EPARSE, "failed to parse XHTML: %v", err)
	}
	if doc.Root() == nil {
		return nil, nox.Errorf(nox.EPARSE, "empty XHTML document")
	}

	entries := collectEntries(doc.Root())
	c, err := html.NewCollector(src, len(entries))
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		anchor := termAnchor(e.dt)
		name := optionName(e.dt)

		if e.dd == nil {
			if anchor != "" {
				c.Skip(i, name, "term has no definition")
			}
			continue
		}

		nodes, err := definitionNodes(e.dd)
		if err != nil {
			c.Skip(i, name, err.Error())
			continue
		}
		fields := html.SplitFields(nodes)
		if anchor == "" && !fields.Marked {
			continue
		}
		if name == "" {
			c.Skip(i, name, "empty option name")
			continue
		}
		if !fields.HasType() {
			c.Skip(i, name, "missing type field")
			continue
		}
		c.Add(i, fields.Option(name, anchor))
	}

	return c.Result()
}

type entry struct {
	dt *etree.Element
	dd *etree.Element
}

// collectEntries pairs every top level <dt> with the <dd> that immediately
// follows it. Lists nested inside a definition belong to that definition.
func collectEntries(root *etree.Element) []entry {
	var entries []entry
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		children := el.ChildElements()
		for i, child := range children {
			switch localName(child) {
			case "dt":
				e := entry{dt: child}
				if i+1 < len(children) && localName(children[i+1]) == "dd" {
					e.dd = children[i+1]
				}
				entries = append(entries, e)
			case "dd":
			default:
				visit(child)
			}
		}
	}
	visit(root)
	return entries
}

func localName(el *etree.Element) string {
	return strings.ToLower(el.Tag)
}

// optionName prefers the option code element and falls back to the whole term.
func optionName(dt *etree.Element) string {
	for _, code := range dt.FindElements(".//code") {
		if code.SelectAttrValue("class", "") == "option" {
			if name := text(code); name != "" {
				return name
			}
		}
	}
	return text(dt)
}

// termAnchor returns the fragment identifying the term on its page.
func termAnchor(dt *etree.Element) string {
	for _, a := range dt.FindElements(".//a") {
		if id := a.SelectAttrValue("id", ""); id != "" {
			return id
		}
	}
	if id := dt.SelectAttrValue("id", ""); id != "" {
		return id
	}
	for _, a := range dt.FindElements(".//a") {
		if _, frag, ok := strings.Cut(a.SelectAttrValue("href", ""), "#"); ok {
			return frag
		}
	}
	return ""
}

// text returns the collapsed character data of el and its descendants.
func text(el *etree.Element) string {
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return strings.Join(strings.Fields(b.String()), " ")
}

// definitionNodes serializes the definition and reparses it as an HTML
// fragment so it can be rendered like the HTML option lists.
func definitionNodes(dd *etree.Element) ([]*xhtml.Node, error) {
	frag := etree.NewDocument()
	frag.WriteSettings = etree.WriteSettings{CanonicalEndTags: true}
	frag.SetRoot(dd.Copy())
	s, err := frag.WriteToString()
	if err != nil {
		return nil, err
	}

	nodes, err := html.ParseFragment(s)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type == xhtml.ElementNode && n.Data == "dd" {
			var children []*xhtml.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				children = append(children, c)
			}
			return children, nil
		}
	}
	return nodes, nil
}
