// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package opf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"

	"golang.org/x/net/html/charset"
)

// Document is a package document split into its top level blocks. The
// blocks stay uninterpreted node trees: which shapes they may take is
// the callers' concern, not the parser's.
type Document struct {
	Version  string
	Metadata *Node
	Manifest *Node
	Spine    *Node
}

var unsupportedXMLDeclaration = regexp.MustCompile(`^<\?\s*xml\s+version\s*=\s*"\s*1.[1-9]\s*"`)
var supportedXMLDeclaration = []byte(`<?xml version="1.0"`)

// Parse reads a package document into its raw blocks. A block that the
// package does not declare comes back nil.
func Parse(r io.Reader) (Document, error) {
	var d Document

	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(r)
	if err != nil {
		return d, err
	}
	opf := buf.Bytes()
	if unsupportedXMLDeclaration.Match(opf) {
		opf = unsupportedXMLDeclaration.ReplaceAll(
			opf, supportedXMLDeclaration)
	}
	r = bytes.NewReader(opf)

	xd := xml.NewDecoder(r)
	// deal with non utf-8 xml files
	xd.CharsetReader = charset.NewReaderLabel
	xd.Entity = xml.HTMLEntity

	root, err := parseTree(xd)
	if err != nil {
		return d, err
	}
	if root == nil {
		return d, errors.New("opf: no root element")
	}

	d.Version = root.Attr("version")
	d.Metadata = root.Find("metadata")
	d.Manifest = root.Find("manifest")
	d.Spine = root.Find("spine")
	return d, nil
}

// parseTree builds a Node tree from the raw token stream. RawToken keeps
// prefixed names exactly as written and does not pair end elements with
// their start elements: a mismatched end tag closes the innermost open
// element, and a truncated document yields what was read so far.
func parseTree(xd *xml.Decoder) (*Node, error) {
	var root *Node
	var stack []*Node

	for {
		tok, err := xd.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: rawName(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: rawName(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if root == nil {
					root = n
				}
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 && root != nil {
				return root, nil
			}
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Text += string(t)
			}
		}
	}
	return root, nil
}

func rawName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}
