package document

import (
	"encoding/xml"
	"strings"
)

// Serialize renders the node as markup including its own tag and attributes.
// Used for wrapped columns, where attributes on the container would be lost
// by unwrapping.
func Serialize(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// SerializeChildren renders the node's content without the wrapping tag:
// direct text followed by serialized child elements. Used for fragment
// columns, where the container carries no attributes worth preserving.
func SerializeChildren(n *Node) string {
	var b strings.Builder
	writeContent(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		writeEscaped(b, a.Value)
		b.WriteByte('"')
	}

	if strings.TrimSpace(n.Text) == "" && len(n.Children) == 0 {
		b.WriteString("/>")
		return
	}

	b.WriteByte('>')
	writeContent(b, n)
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

func writeContent(b *strings.Builder, n *Node) {
	if t := strings.TrimSpace(n.Text); t != "" {
		writeEscaped(b, t)
	}
	for _, c := range n.Children {
		writeNode(b, c)
	}
}

func writeEscaped(b *strings.Builder, s string) {
	// xml.EscapeText only errors on a failing writer; strings.Builder never fails.
	_ = xml.EscapeText(b, []byte(s))
}
