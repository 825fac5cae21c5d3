// Package richtext turns the editor document trees quizlet attaches to a
// card side into inline html that can be placed in a note field.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is one of *Text, *Paragraph or *Fragment. A nil Node inside a
// container's children is a hard line break.
type Node interface {
	node()
}

type MarkKind int

const (
	Other MarkKind = iota
	Bold
	Italic
	Underline
	Highlight
)

func (k MarkKind) String() string {
	switch k {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	case Highlight:
		return "highlight"
	}
	return "other"
}

type Mark struct {
	Kind  MarkKind
	Attrs map[string]string
}

type Text struct {
	Text  string
	Marks []Mark
}

type Paragraph struct {
	Children []Node
}

// Fragment is any container other than a paragraph (the document root,
// lists, etc.), it renders as its children with no wrapper.
type Fragment struct {
	Children []Node
}

func (*Text) node()      {}
func (*Paragraph) node() {}
func (*Fragment) node()  {}

type rawMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

type rawNode struct {
	Type    string            `json:"type"`
	Text    string            `json:"text"`
	Marks   []rawMark         `json:"marks"`
	Content []json.RawMessage `json:"content"`
}

// Parse decodes a rich text document. An absent, null, empty string or
// empty document yields a nil Node and no error. Documents that arrive
// double encoded (a json string containing the document) are accepted.
func Parse(raw json.RawMessage) (Node, error) {
	raw = bytes.TrimSpace(raw)
	if isEmpty(raw) {
		return nil, nil
	}
	if raw[0] == '"' {
		var inner string
		err := json.Unmarshal(raw, &inner)
		if err != nil {
			return nil, fmt.Errorf("decode rich text string: %w", err)
		}
		return Parse(json.RawMessage(inner))
	}

	var root rawNode
	err := json.Unmarshal(raw, &root)
	if err != nil {
		return nil, fmt.Errorf("decode rich text: %w", err)
	}
	if root.Type != "text" && len(root.Content) == 0 {
		return nil, nil
	}
	return convert(root)
}

func isEmpty(raw []byte) bool {
	return len(raw) == 0 ||
		bytes.Equal(raw, []byte("null")) ||
		bytes.Equal(raw, []byte(`""`))
}

func convert(n rawNode) (Node, error) {
	if n.Type == "text" {
		marks := make([]Mark, 0, len(n.Marks))
		for _, m := range n.Marks {
			marks = append(marks, convertMark(m))
		}
		return &Text{Text: n.Text, Marks: marks}, nil
	}

	if n.Content == nil {
		// hardBreak and friends have no content and render as a line break,
		// an empty paragraph still keeps its wrapper around that break.
		if n.Type == "paragraph" {
			return &Paragraph{Children: []Node{nil}}, nil
		}
		return nil, nil
	}

	children := make([]Node, 0, len(n.Content))
	for _, rawChild := range n.Content {
		if isEmpty(bytes.TrimSpace(rawChild)) {
			children = append(children, nil)
			continue
		}
		var child rawNode
		err := json.Unmarshal(rawChild, &child)
		if err != nil {
			return nil, fmt.Errorf("decode rich text node: %w", err)
		}
		converted, err := convert(child)
		if err != nil {
			return nil, err
		}
		children = append(children, converted)
	}

	if n.Type == "paragraph" {
		return &Paragraph{Children: children}, nil
	}
	return &Fragment{Children: children}, nil
}

func convertMark(m rawMark) Mark {
	mark := Mark{Kind: Other}
	switch m.Type {
	case "b":
		mark.Kind = Bold
	case "i":
		mark.Kind = Italic
	case "u":
		mark.Kind = Underline
	}
	if len(m.Attrs) == 0 {
		return mark
	}

	mark.Attrs = make(map[string]string, len(m.Attrs))
	for k, v := range m.Attrs {
		if s, ok := v.(string); ok {
			mark.Attrs[k] = s
			continue
		}
		mark.Attrs[k] = fmt.Sprint(v)
	}
	if mark.Kind == Other {
		if _, ok := lightColors[mark.Attrs["class"]]; ok {
			mark.Kind = Highlight
		}
	}
	return mark
}
