// Package html renders documentation markup as plain text using the
// golang.org/x/net/html node tree. Paragraph structure and inline code
// spans survive the conversion; everything else is flattened.
package html

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Mode selects how inline code is rendered.
type Mode int

const (
	// Prose wraps inline code in backticks. Used for descriptions.
	Prose Mode = iota
	// Literal emits inline code as bare text. Used for default and
	// example values, which are code in their entirety.
	Literal
)

// Render converts nodes and their descendants to plain text. Block elements
// are separated by a blank line, preformatted text is kept verbatim, and
// whitespace elsewhere is collapsed.
func Render(nodes []*html.Node, mode Mode) string {
	r := &renderer{mode: mode}
	for _, n := range nodes {
		r.node(n)
	}
	r.flush()
	return strings.Join(r.blocks, "\n\n")
}

// RenderString parses an HTML fragment and renders it like Render.
func RenderString(fragment string, mode Mode) (string, error) {
	nodes, err := ParseFragment(fragment)
	if err != nil {
		return "", err
	}
	return Render(nodes, mode), nil
}

// ParseFragment parses markup in the context of a <body> element.
func ParseFragment(fragment string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	return html.ParseFragment(strings.NewReader(fragment), body)
}

// Text returns the text content of nodes with all whitespace runs collapsed
// to single spaces.
func Text(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		textContent(&b, n)
	}
	return collapse(b.String())
}

type renderer struct {
	mode   Mode
	blocks []string
	cur    strings.Builder
}

func (r *renderer) flush() {
	s := strings.TrimSpace(r.cur.String())
	r.cur.Reset()
	if s != "" {
		r.blocks = append(r.blocks, s)
	}
}

// inline appends collapsed text, joining adjacent runs with one space.
func (r *renderer) inline(s string) {
	if s == "" {
		return
	}
	leading := isSpace(s[0])
	trailing := isSpace(s[len(s)-1])
	s = collapse(s)
	if s == "" {
		if r.cur.Len() > 0 && !r.endsInSpace() {
			r.cur.WriteByte(' ')
		}
		return
	}
	if leading && r.cur.Len() > 0 && !r.endsInSpace() {
		r.cur.WriteByte(' ')
	}
	r.cur.WriteString(s)
	if trailing {
		r.cur.WriteByte(' ')
	}
}

func (r *renderer) endsInSpace() bool {
	str := r.cur.String()
	return len(str) > 0 && isSpace(str[len(str)-1])
}

func (r *renderer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.inline(n.Data)
		return
	case html.ElementNode:
	case html.DocumentNode:
		r.children(n)
		return
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head:
		return
	case atom.Br:
		r.trimTrailingSpace()
		r.cur.WriteByte('\n')
		return
	case atom.Pre:
		r.flush()
		var b strings.Builder
		textContent(&b, n)
		if s := strings.Trim(b.String(), "\n"); strings.TrimSpace(s) != "" {
			r.blocks = append(r.blocks, s)
		}
		return
	case atom.Code, atom.Tt, atom.Kbd, atom.Samp:
		var b strings.Builder
		textContent(&b, n)
		code := collapse(b.String())
		if code == "" {
			return
		}
		if r.mode == Prose {
			code = "`" + code + "`"
		}
		r.cur.WriteString(code)
		return
	case atom.Ul, atom.Ol:
		r.flush()
		r.list(n)
		return
	}

	if isBlock(n.DataAtom) {
		r.flush()
		r.children(n)
		r.flush()
		return
	}
	r.children(n)
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c)
	}
}

// list renders each <li> as one "- " prefixed line of a single block.
func (r *renderer) list(n *html.Node) {
	var lines []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		sub := &renderer{mode: r.mode}
		sub.children(c)
		sub.flush()
		item := strings.Join(sub.blocks, "\n  ")
		if item == "" {
			continue
		}
		lines = append(lines, "- "+strings.ReplaceAll(item, "\n\n", "\n  "))
	}
	if len(lines) > 0 {
		r.blocks = append(r.blocks, strings.Join(lines, "\n"))
	}
}

func (r *renderer) trimTrailingSpace() {
	s := strings.TrimRight(r.cur.String(), " ")
	r.cur.Reset()
	r.cur.WriteString(s)
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Dl, atom.Dt, atom.Dd, atom.Table, atom.Tr,
		atom.Blockquote, atom.Section, atom.Article, atom.Li,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func textContent(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(b, c)
	}
}

// collapse joins runs of markup whitespace into single spaces. Only the
// ASCII whitespace of the HTML grammar counts; a non-breaking space is text.
func collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpaceRune), " ")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isSpaceRune(r rune) bool {
	return r < 0x80 && isSpace(byte(r))
}
