package note

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Properties is the ordered frontmatter record of a note.
//
// It edits the YAML node tree in place: key order, comments, and the quoting
// style of untouched values are kept when the note is written back.
type Properties struct {
	doc  *yaml.Node
	root *yaml.Node
}

// NewProperties returns an empty record.
func NewProperties() *Properties {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	return &Properties{
		doc:  &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}},
		root: root,
	}
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.root.Content) / 2
}

// Keys returns the property keys in document order.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, p.Len())
	for i := 0; i+1 < len(p.root.Content); i += 2 {
		keys = append(keys, p.root.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present, even with a null value.
func (p *Properties) Has(key string) bool {
	return p.index(key) >= 0
}

// Value returns the value stored under key.
func (p *Properties) Value(key string) (Value, bool) {
	i := p.index(key)
	if i < 0 {
		return Value{}, false
	}
	return valueOf(p.root.Content[i+1]), true
}

// String returns the scalar text stored under key. ok is false when the key
// is missing or holds null, a list, or a mapping.
func (p *Properties) String(key string) (string, bool) {
	value, ok := p.Value(key)
	if !ok {
		return "", false
	}
	return value.Scalar()
}

// Bool reports whether the value under key is truthy.
func (p *Properties) Bool(key string) bool {
	value, ok := p.Value(key)
	return ok && value.Truthy()
}

// Set stores value as a string scalar under key, appending the key when it
// is new. An existing quoted scalar stays quoted; anything else is written
// plain.
func (p *Properties) Set(key, value string) {
	i := p.index(key)
	if i < 0 {
		p.root.Content = append(p.root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
		return
	}

	node := p.root.Content[i+1]
	if node.Kind != yaml.ScalarNode {
		p.root.Content[i+1] = &yaml.Node{
			Kind:        yaml.ScalarNode,
			Value:       value,
			LineComment: node.LineComment,
		}
		return
	}

	node.Value = value
	if node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		node.Tag = "!!str"
		return
	}
	node.Style = 0
	node.Tag = ""
}

// Delete removes key. It reports whether the key was present.
func (p *Properties) Delete(key string) bool {
	i := p.index(key)
	if i < 0 {
		return false
	}
	p.root.Content = append(p.root.Content[:i], p.root.Content[i+2:]...)
	return true
}

// Snapshot returns a read-only copy of the record.
func (p *Properties) Snapshot() Snapshot {
	snap := Snapshot{
		Keys:   p.Keys(),
		Values: make(map[string]Value, p.Len()),
	}
	for i := 0; i+1 < len(p.root.Content); i += 2 {
		snap.Values[p.root.Content[i].Value] = valueOf(p.root.Content[i+1])
	}
	return snap
}

func (p *Properties) index(key string) int {
	for i := 0; i+1 < len(p.root.Content); i += 2 {
		if p.root.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func (p *Properties) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p.doc); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	return buf.Bytes(), nil
}

// Kind classifies a property value.
type Kind string

const (
	KindNull   Kind = "null"
	KindText   Kind = "text"
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindList   Kind = "list"
	KindObject Kind = "object"
)

// Value is a decoded property value.
type Value struct {
	Kind Kind
	// Text is the scalar as written. Lists join their scalar items with ", ".
	Text string
}

// Scalar returns the text of a text, number, or bool value.
func (v Value) Scalar() (string, bool) {
	switch v.Kind {
	case KindText, KindNumber, KindBool:
		return v.Text, true
	default:
		return "", false
	}
}

// Truthy reports whether the value counts as "on": true, a non-zero number,
// or one of the strings true, yes, on, 1.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		b, err := strconv.ParseBool(strings.ToLower(v.Text))
		if err != nil {
			return isTruthyWord(v.Text)
		}
		return b
	case KindNumber:
		f, err := strconv.ParseFloat(v.Text, 64)
		return err == nil && f != 0
	case KindText:
		return isTruthyWord(v.Text)
	default:
		return false
	}
}

func isTruthyWord(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

func valueOf(node *yaml.Node) Value {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return Value{Kind: KindNull}
		case "!!bool":
			return Value{Kind: KindBool, Text: node.Value}
		case "!!int", "!!float":
			return Value{Kind: KindNumber, Text: node.Value}
		default:
			return Value{Kind: KindText, Text: node.Value}
		}
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if text, ok := valueOf(item).Scalar(); ok {
				items = append(items, text)
			}
		}
		return Value{Kind: KindList, Text: strings.Join(items, ", ")}
	case yaml.MappingNode:
		return Value{Kind: KindObject}
	default:
		return Value{Kind: KindNull}
	}
}

// Snapshot is an immutable view of a note's properties.
type Snapshot struct {
	// HasFrontmatter reports whether the note had a frontmatter block.
	HasFrontmatter bool
	Keys           []string
	Values         map[string]Value
}

// Lookup returns the value stored under key.
func (s Snapshot) Lookup(key string) (Value, bool) {
	value, ok := s.Values[key]
	return value, ok
}

// String returns the scalar text stored under key.
func (s Snapshot) String(key string) (string, bool) {
	value, ok := s.Values[key]
	if !ok {
		return "", false
	}
	return value.Scalar()
}

// Bool reports whether the value under key is truthy.
func (s Snapshot) Bool(key string) bool {
	value, ok := s.Values[key]
	return ok && value.Truthy()
}

// Snapshot returns a read-only view of the document's properties.
func (d *Document) Snapshot() Snapshot {
	snap := d.Properties.Snapshot()
	snap.HasFrontmatter = d.HasFrontmatter
	return snap
}
