package record

import "strings"

// Node is a single node of the rich-text description tree. Block-level nodes
// carry a Type and Children; leaf nodes of type "text" carry the Text itself.
type Node struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Blocks is the rich-text description field: an ordered list of block nodes.
type Blocks []Node

// BlocksFromString wraps a plain string into a single-paragraph rich-text
// structure, the shape the content store expects for the description field.
func BlocksFromString(s string) Blocks {
	return Blocks{{
		Type:     "paragraph",
		Children: []Node{{Type: "text", Text: s}},
	}}
}

// PlainText renders the rich-text tree to plain text by concatenating, in
// order, the text of every text-typed node, joined by single spaces and
// trimmed.
func (b Blocks) PlainText() string {
	var parts []string
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if n.Type == "text" && n.Text != "" {
				parts = append(parts, n.Text)
			}
			if len(n.Children) > 0 {
				walk(n.Children)
			}
		}
	}
	walk(b)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// IsEmpty reports whether the rich-text field carries no text at all.
func (b Blocks) IsEmpty() bool {
	return b.PlainText() == ""
}
