package document

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	lru "github.com/hashicorp/golang-lru/v2"
)

const exprCacheSize = 256

// Compiled XPath plans are cached across documents. Compilation dominates
// selector cost for the short expressions used as anchors.
var exprCache, _ = lru.New[string, *xpath.Expr](exprCacheSize)

func compile(expression string) (*xpath.Expr, error) {
	if e, ok := exprCache.Get(expression); ok {
		return e, nil
	}
	e, err := xpath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression %q: %w", expression, err)
	}
	exprCache.Add(expression, e)
	return e, nil
}

// QueryAll returns every node in the document matching the XPath expression,
// in document order.
func QueryAll(doc *Document, expression string) ([]*Node, error) {
	e, err := compile(expression)
	if err != nil {
		return nil, err
	}

	var out []*Node
	iter := e.Select(newNavigator(doc))
	for iter.MoveNext() {
		nav, ok := iter.Current().(*navigator)
		if !ok || nav.cur == nil || nav.attr >= 0 {
			continue
		}
		out = append(out, nav.cur)
	}
	return out, nil
}

// QueryOne returns the first node matching the XPath expression, or nil.
func QueryOne(doc *Document, expression string) (*Node, error) {
	nodes, err := QueryAll(doc, expression)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// ExtractText evaluates an XPath expression against an XML body and returns
// the trimmed text of the first match, or empty string when nothing matches.
func ExtractText(body, expression string) (string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse XML: %w", err)
	}

	node, err := xmlquery.Query(doc, expression)
	if err != nil {
		return "", fmt.Errorf("invalid XPath expression: %w", err)
	}
	if node == nil {
		return "", nil
	}
	return strings.TrimSpace(node.InnerText()), nil
}

// ExtractHTMLText evaluates an XPath expression against a lenient HTML body
// and returns the trimmed text of the first match.
func ExtractHTMLText(body, expression string) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	node, err := htmlquery.Query(doc, expression)
	if err != nil {
		return "", fmt.Errorf("invalid XPath expression: %w", err)
	}
	if node == nil {
		return "", nil
	}
	return strings.TrimSpace(htmlquery.InnerText(node)), nil
}

// ExtractAllText returns the concatenated text content of an XML body.
func ExtractAllText(body string) (string, error) {
	doc, err := ParseString(body, ParseOptions{})
	if err != nil {
		return "", err
	}
	return doc.Root.InnerText(), nil
}

// navigator adapts the neutral tree to the antchfx/xpath NodeNavigator
// interface so compiled expressions run against either parser backend.
// attr is -1 on an element position, otherwise an index into cur.Attrs.
type navigator struct {
	doc  *Document
	cur  *Node
	attr int
}

func newNavigator(doc *Document) *navigator {
	return &navigator{doc: doc, cur: nil, attr: -1}
}

func (n *navigator) NodeType() xpath.NodeType {
	switch {
	case n.cur == nil:
		return xpath.RootNode
	case n.attr >= 0:
		return xpath.AttributeNode
	default:
		return xpath.ElementNode
	}
}

func (n *navigator) LocalName() string {
	if n.cur == nil {
		return ""
	}
	if n.attr >= 0 {
		return n.cur.Attrs[n.attr].Name
	}
	return n.cur.Name
}

func (n *navigator) Prefix() string { return "" }

func (n *navigator) Value() string {
	switch {
	case n.cur == nil:
		if n.doc.Root == nil {
			return ""
		}
		return n.doc.Root.InnerText()
	case n.attr >= 0:
		return n.cur.Attrs[n.attr].Value
	default:
		return n.cur.InnerText()
	}
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *navigator) MoveToRoot() {
	n.cur = nil
	n.attr = -1
}

func (n *navigator) MoveToParent() bool {
	if n.attr >= 0 {
		n.attr = -1
		return true
	}
	if n.cur == nil {
		return false
	}
	n.cur = n.cur.Parent // nil means back to the document root position
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	if n.cur == nil || n.attr+1 >= len(n.cur.Attrs) {
		return false
	}
	n.attr++
	return true
}

func (n *navigator) MoveToChild() bool {
	if n.attr >= 0 {
		return false
	}
	if n.cur == nil {
		if n.doc.Root == nil {
			return false
		}
		n.cur = n.doc.Root
		return true
	}
	if len(n.cur.Children) == 0 {
		return false
	}
	n.cur = n.cur.Children[0]
	return true
}

func (n *navigator) MoveToFirst() bool {
	if n.cur == nil || n.attr >= 0 {
		return false
	}
	if n.cur.Parent == nil {
		return true
	}
	n.cur = n.cur.Parent.Children[0]
	return true
}

func (n *navigator) MoveToNext() bool {
	if n.cur == nil || n.attr >= 0 || n.cur.Parent == nil {
		return false
	}
	siblings := n.cur.Parent.Children
	if n.cur.index+1 >= len(siblings) {
		return false
	}
	n.cur = siblings[n.cur.index+1]
	return true
}

func (n *navigator) MoveToPrevious() bool {
	if n.cur == nil || n.attr >= 0 || n.cur.Parent == nil {
		return false
	}
	if n.cur.index == 0 {
		return false
	}
	n.cur = n.cur.Parent.Children[n.cur.index-1]
	return true
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.doc != n.doc {
		return false
	}
	n.cur = o.cur
	n.attr = o.attr
	return true
}
