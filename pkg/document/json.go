package document

import (
	"encoding/json"
	"strings"
)

// ToJSON converts the node into a JSON document. Attributes become
// "@"-prefixed keys, direct text becomes "#text" when the element also has
// attributes or children, and repeated child names collapse into arrays.
func ToJSON(n *Node) ([]byte, error) {
	return json.Marshal(map[string]any{n.Name: jsonValue(n)})
}

func jsonValue(n *Node) any {
	text := strings.TrimSpace(n.Text)

	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		if text == "" {
			return nil
		}
		return text
	}

	m := make(map[string]any, len(n.Attrs)+len(n.Children)+1)
	for _, a := range n.Attrs {
		m["@"+a.Name] = a.Value
	}
	if text != "" {
		m["#text"] = text
	}

	counts := make(map[string]int)
	for _, c := range n.Children {
		counts[c.Name]++
	}
	for _, c := range n.Children {
		v := jsonValue(c)
		if counts[c.Name] > 1 {
			arr, _ := m[c.Name].([]any)
			m[c.Name] = append(arr, v)
		} else {
			m[c.Name] = v
		}
	}

	return m
}
