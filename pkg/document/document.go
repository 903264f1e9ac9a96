// Package document parses XML and lenient HTML into a neutral element tree
// and provides XPath selection, serialization, and JSON conversion over it.
// The tree is the only representation the tabular engine consumes, so both
// parser backends converge on the same Node shape.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// NamespaceMode controls how namespaced element and attribute names are
// rendered in the neutral tree.
type NamespaceMode int

const (
	// NamespaceStrip keeps only the local part of a name.
	NamespaceStrip NamespaceMode = iota
	// NamespaceKeep renders prefix:local when a prefix is present.
	NamespaceKeep
	// NamespaceExpand renders {uri}local when a namespace URI is present.
	NamespaceExpand
)

// ParseOptions configures document parsing.
type ParseOptions struct {
	Namespaces NamespaceMode
}

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is one element in the neutral tree. Text holds the element's direct
// (non-descendant) text content with interleaving collapsed. Line is the
// source line number when the parser backend tracks positions, zero
// otherwise.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
	Line     int
	Parent   *Node

	index int // position among siblings
}

// Document wraps the root element of a parsed document.
type Document struct {
	Root *Node
}

// Attr returns the value of the named attribute and whether it exists.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child element with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasChildren reports whether the node has any element children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// InnerText returns the concatenated text of the node and all descendants.
func (n *Node) InnerText() string {
	var b strings.Builder
	n.innerText(&b)
	return b.String()
}

func (n *Node) innerText(b *strings.Builder) {
	b.WriteString(n.Text)
	for _, c := range n.Children {
		c.innerText(b)
	}
}

// Parse reads an XML document into a neutral tree.
func Parse(r io.Reader, opts ParseOptions) (*Document, error) {
	xn, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := firstXMLElement(xn)
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	return &Document{Root: convertXML(root, nil, 0, opts.Namespaces)}, nil
}

// ParseString parses an XML document held in memory.
func ParseString(s string, opts ParseOptions) (*Document, error) {
	return Parse(strings.NewReader(s), opts)
}

// ParseHTML reads a lenient HTML document into a neutral tree. The input
// charset is sniffed and decoded before parsing.
func ParseHTML(r io.Reader) (*Document, error) {
	cr, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode HTML charset: %w", err)
	}

	hn, err := html.Parse(cr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := firstHTMLElement(hn)
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	return &Document{Root: convertHTML(root, nil, 0)}, nil
}

// ParseHTMLString parses a lenient HTML document held in memory.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

// Valid reports whether the input is well-formed XML with a root element.
func Valid(s string) bool {
	_, err := ParseString(s, ParseOptions{})
	return err == nil
}

func firstXMLElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func convertXML(xn *xmlquery.Node, parent *Node, index int, mode NamespaceMode) *Node {
	n := &Node{
		Name:   xmlName(xn.Prefix, xn.NamespaceURI, xn.Data, mode),
		Parent: parent,
		index:  index,
	}

	for _, a := range xn.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		n.Attrs = append(n.Attrs, Attr{
			Name:  xmlName(a.Name.Space, a.NamespaceURI, a.Name.Local, mode),
			Value: a.Value,
		})
	}

	var text strings.Builder
	for c := xn.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			n.Children = append(n.Children, convertXML(c, n, len(n.Children), mode))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(c.Data)
		}
	}
	n.Text = text.String()

	return n
}

func xmlName(prefix, uri, local string, mode NamespaceMode) string {
	switch mode {
	case NamespaceKeep:
		if prefix != "" {
			return prefix + ":" + local
		}
	case NamespaceExpand:
		if uri != "" {
			return "{" + uri + "}" + local
		}
	}
	return local
}

func firstHTMLElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func convertHTML(hn *html.Node, parent *Node, index int) *Node {
	n := &Node{
		Name:   hn.Data,
		Parent: parent,
		index:  index,
	}

	for _, a := range hn.Attr {
		n.Attrs = append(n.Attrs, Attr{Name: a.Key, Value: a.Val})
	}

	var text strings.Builder
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n.Children = append(n.Children, convertHTML(c, n, len(n.Children)))
		case html.TextNode:
			text.WriteString(c.Data)
		}
	}
	n.Text = text.String()

	return n
}
