// Package note parses markdown notes and their YAML frontmatter.
//
// A note may begin with a frontmatter block fenced by "---" lines. The block
// holds a YAML mapping of properties; everything after the closing fence is
// the body. Writing a note back keeps the body byte-for-byte and re-encodes
// the properties from the parsed node tree, so keys this package does not
// understand survive untouched.
package note

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontmatter indicates a frontmatter block that is not a YAML mapping.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

const fence = "---"

// Document is a parsed note.
type Document struct {
	// Path is the note path the document was read from.
	Path string

	// Properties holds the frontmatter mapping. It is never nil.
	Properties *Properties

	// HasFrontmatter reports whether the source had a frontmatter block.
	HasFrontmatter bool

	// Body is the text after the frontmatter block.
	Body string

	// Newline is the line ending used for the frontmatter block: "\n" or
	// "\r\n".
	Newline string
}

// Parse splits data into frontmatter and body.
func Parse(path string, data []byte) (*Document, error) {
	content := string(data)
	doc := &Document{Path: path, Newline: lineEnding(content)}

	block, body, ok := split(content)
	if !ok {
		doc.Properties = NewProperties()
		doc.Body = content
		return doc, nil
	}

	props, err := parseProperties(block)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc.Properties = props
	doc.HasFrontmatter = true
	doc.Body = body
	return doc, nil
}

// Bytes renders the document back to markdown.
func (d *Document) Bytes() ([]byte, error) {
	if !d.HasFrontmatter && d.Properties.Len() == 0 {
		return []byte(d.Body), nil
	}

	newline := d.Newline
	if newline == "" {
		newline = "\n"
	}

	var buf bytes.Buffer
	buf.WriteString(fence + newline)
	if d.Properties.Len() > 0 {
		encoded, err := d.Properties.encode()
		if err != nil {
			return nil, err
		}
		if newline != "\n" {
			encoded = bytes.ReplaceAll(encoded, []byte("\n"), []byte(newline))
		}
		buf.Write(encoded)
	}
	buf.WriteString(fence + newline)
	buf.WriteString(d.Body)
	return buf.Bytes(), nil
}

// lineEnding returns the line ending of the first line of content. Content
// without a line break uses "\n".
func lineEnding(content string) string {
	first, _, found := strings.Cut(content, "\n")
	if found && strings.HasSuffix(first, "\r") {
		return "\r\n"
	}
	return "\n"
}

// split returns the frontmatter block and the body. ok is false when the
// content has no complete frontmatter block.
func split(content string) (block, body string, ok bool) {
	first, rest, found := strings.Cut(content, "\n")
	if !found || strings.TrimRight(first, "\r") != fence {
		return "", content, false
	}

	offset := 0
	for offset <= len(rest) {
		line, _, hasMore := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r") == fence {
			block = rest[:offset]
			end := offset + len(line)
			if hasMore {
				end++
			}
			return block, rest[end:], true
		}
		if !hasMore {
			break
		}
		offset += len(line) + 1
	}
	return "", content, false
}

func parseProperties(block string) (*Properties, error) {
	if strings.TrimSpace(block) == "" {
		return NewProperties(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return NewProperties(), nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
	case yaml.ScalarNode:
		if root.ShortTag() == "!!null" {
			return NewProperties(), nil
		}
		return nil, fmt.Errorf("%w: expected a mapping, got a scalar", ErrInvalidFrontmatter)
	default:
		return nil, fmt.Errorf("%w: expected a mapping", ErrInvalidFrontmatter)
	}

	return &Properties{doc: &doc, root: root}, nil
}
