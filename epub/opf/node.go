// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package opf

import "strings"

// Node is one element of a package document. Names and attribute keys
// are kept exactly as written in the source, namespace prefixes
// included: real world packages disagree on prefixes, so nothing here
// resolves them and matching ignores them instead.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr is one attribute, name kept as written.
type Attr struct {
	Name  string
	Value string
}

// Local returns the element name with any namespace prefix removed.
func (n *Node) Local() string {
	return localName(n.Name)
}

// Attr returns the value of the named attribute. An exact match wins
// over a prefix insensitive one.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	for _, a := range n.Attrs {
		if localName(a.Name) == name {
			return a.Value
		}
	}
	return ""
}

// Find returns the first direct child matching name, prefixes ignored.
func (n *Node) Find(name string) *Node {
	want := localName(name)
	for _, c := range n.Children {
		if c.Local() == want {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child matching name, in document order,
// prefixes ignored.
func (n *Node) FindAll(name string) []*Node {
	want := localName(name)
	var out []*Node
	for _, c := range n.Children {
		if c.Local() == want {
			out = append(out, c)
		}
	}
	return out
}

// InnerText returns the character data directly inside the element or,
// when there is none, the concatenated text of its descendants. Metadata
// values sometimes hide one level down, wrapped in a display element.
func (n *Node) InnerText() string {
	if strings.TrimSpace(n.Text) != "" {
		return n.Text
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	b.WriteString(n.Text)
	for _, c := range n.Children {
		c.appendText(b)
	}
}

func localName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
