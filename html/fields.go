package html

import (
	"slices"
	"strings"

	"github.com/mvil/nox"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type fieldKind int

const (
	fieldDescription fieldKind = iota
	fieldType
	fieldDefault
	fieldExample
	fieldDeclaredBy
)

var fieldLabels = []struct {
	kind  fieldKind
	label string
}{
	{fieldType, "Type:"},
	{fieldDefault, "Default:"},
	{fieldExample, "Example:"},
	{fieldDeclaredBy, "Declared by:"},
}

// Fields holds the top level nodes of an option definition split into its
// sections. Each non-description section starts with its label element.
type Fields struct {
	Description []*html.Node
	Type        []*html.Node
	Default     []*html.Node
	Example     []*html.Node
	DeclaredBy  []*html.Node

	// Marked is set if any labelled section was found.
	Marked bool
}

// SplitFields assigns definition nodes to sections. A new section begins at
// every element that opens with an emphasized label: "Type:", "Default:",
// "Example:" or "Declared by:" inside an <em> or a span of class
// "emphasis". Nodes before the first label belong to the description, so a
// description paragraph that merely starts with "Example:" stays there.
func SplitFields(nodes []*html.Node) Fields {
	var f Fields
	cur := &f.Description
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			if kind, ok := labelOf(n); ok {
				f.Marked = true
				cur = f.section(kind)
			}
		}
		*cur = append(*cur, n)
	}
	return f
}

// HasType reports whether a type section was found.
func (f Fields) HasType() bool {
	return len(f.Type) > 0
}

// Option renders the sections into a record.
func (f Fields) Option(name, anchor string) *nox.Record {
	return &nox.Record{
		Name:        name,
		Anchor:      anchor,
		Description: Render(f.Description, Prose),
		Type:        stripLabel(Render(f.Type, Literal), "Type:"),
		Default:     stripLabel(Render(f.Default, Literal), "Default:"),
		Example:     stripLabel(Render(f.Example, Literal), "Example:"),
		DeclaredBy:  declarations(f.DeclaredBy),
	}
}

func (f *Fields) section(kind fieldKind) *[]*html.Node {
	switch kind {
	case fieldType:
		return &f.Type
	case fieldDefault:
		return &f.Default
	case fieldExample:
		return &f.Example
	case fieldDeclaredBy:
		return &f.DeclaredBy
	}
	return &f.Description
}

func labelOf(n *html.Node) (fieldKind, bool) {
	marker := leadingElement(n)
	if marker == nil || !isEmphasis(marker) {
		return fieldDescription, false
	}
	text := Text([]*html.Node{marker})
	for _, l := range fieldLabels {
		if hasLabel(text, l.label) {
			return l.kind, true
		}
	}
	return fieldDescription, false
}

// leadingElement returns the first child of n, skipping blank text, if it
// is an element.
func leadingElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode:
			return c
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
			continue
		case c.Type == html.CommentNode:
			continue
		}
		return nil
	}
	return nil
}

func isEmphasis(n *html.Node) bool {
	if n.DataAtom == atom.Em {
		return true
	}
	return n.DataAtom == atom.Span && hasClass(n, "emphasis")
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func hasLabel(s, label string) bool {
	return len(s) >= len(label) && strings.EqualFold(s[:len(label)], label)
}

func stripLabel(s, label string) string {
	s = strings.TrimSpace(s)
	if hasLabel(s, label) {
		s = s[len(label):]
	}
	return strings.TrimSpace(s)
}

// declarations collects links from the declared-by section. Sections without
// links fall back to one declaration per rendered line.
func declarations(nodes []*html.Node) []nox.Declaration {
	if len(nodes) == 0 {
		return nil
	}
	var decls []nox.Declaration
	for _, n := range nodes {
		walk(n, func(el *html.Node) {
			if el.DataAtom != atom.A {
				return
			}
			href := attr(el, "href")
			path := Text([]*html.Node{el})
			if href == "" && path == "" {
				return
			}
			if path == "" {
				path = href
			}
			decls = append(decls, nox.Declaration{Path: path, URL: href})
		})
	}
	if len(decls) > 0 {
		return decls
	}
	text := stripLabel(Render(nodes, Literal), "Declared by:")
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			decls = append(decls, nox.Declaration{Path: line})
		}
	}
	return decls
}

// walk calls fn for every element in the subtree rooted at n, in document order.
func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
