// Package xdsl turns raw XDSL text into a generic attributed element tree.
// It knows nothing about networks or nodes; semantic interpretation happens
// in the extract package.
package xdsl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	cerrors "github.com/pgmkit/xdsl2agrum/internal/errors"
)

// Attr is a single name/value attribute on an element.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the attributed tree. Text holds the character data
// found directly under the element, whitespace-trimmed; chunks separated by
// child elements are joined with a single space.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given element name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first direct child with the given name,
// or "" when no such child exists.
func (e *Element) ChildText(name string) string {
	if c := e.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// Document is a parsed XDSL file.
type Document struct {
	Root *Element
}

// First returns the first element named name in document order, searching
// depth-first from the root, or nil when absent.
func (d *Document) First(name string) *Element {
	if d.Root == nil {
		return nil
	}
	return first(d.Root, name)
}

func first(e *Element, name string) *Element {
	if e.Name == name {
		return e
	}
	for _, c := range e.Children {
		if m := first(c, name); m != nil {
			return m
		}
	}
	return nil
}

// Walk visits every element in document order, root first.
func (d *Document) Walk(fn func(*Element)) {
	if d.Root == nil {
		return
	}
	walk(d.Root, fn)
}

func walk(e *Element, fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		walk(c, fn)
	}
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a complete XDSL document from r. It fails with
// ErrMalformedDocument when the markup is not well formed; it applies no
// semantic checks beyond that.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, cerrors.ErrMalformedDocument.GenWithStackByArgs(err)
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, cerrors.ErrMalformedDocument.GenWithStackByArgs("multiple root elements")
			}
			el := &Element{Name: tok.Name.Local}
			for _, a := range tok.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else {
				root = el
			}
			stack = append(stack, el)

		case xml.EndElement:
			// The decoder guarantees tags balance; just pop.
			stack = stack[:len(stack)-1]

		case xml.CharData:
			text := strings.TrimSpace(string(tok))
			if text == "" {
				continue
			}
			if len(stack) == 0 {
				return nil, cerrors.ErrMalformedDocument.GenWithStackByArgs("text outside of root element")
			}
			el := stack[len(stack)-1]
			if el.Text != "" {
				el.Text += " "
			}
			el.Text += text
		}
	}

	if root == nil {
		return nil, cerrors.ErrMalformedDocument.GenWithStackByArgs("document has no root element")
	}
	return &Document{Root: root}, nil
}

// charsetReader decodes the legacy single-byte encodings GeNIe commonly
// declares. UTF-8 input passes through untouched.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, errors.New("unsupported document encoding " + charset)
	}
}
