// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"strings"

	"github.com/readium/readium-shelf-server/epub/opf"
)

// Readers sort and display on the title, so an undeclared one gets a
// placeholder instead of staying empty.
const defaultTitle = "Untitled"

// normalizeMetadata flattens the shape variants real packages declare:
// elements may appear once or repeated, carry bare text or wrap it in
// attribute carrying markup. All of that tolerance lives here; the rest
// of the pipeline sees one canonical shape.
func normalizeMetadata(block *opf.Node, version string) Metadata {
	m := Metadata{Version: version}

	m.Title = textOf(first(block, "title"))
	if m.Title == "" {
		m.Title = defaultTitle
	}

	m.Authors = textsOf(all(block, "creator"))
	if len(m.Authors) > 0 {
		m.Author = m.Authors[0]
	}
	m.Subjects = textsOf(all(block, "subject"))

	m.Publisher = textOf(first(block, "publisher"))
	m.Language = textOf(first(block, "language"))
	m.Isbn = textOf(first(block, "identifier"))
	m.Description = textOf(first(block, "description"))
	m.Date = textOf(first(block, "date"))
	m.Rights = textOf(first(block, "rights"))

	m.Cover = declaredCover(block)
	return m
}

func first(block *opf.Node, name string) *opf.Node {
	if block == nil {
		return nil
	}
	return block.Find(name)
}

func all(block *opf.Node, name string) []*opf.Node {
	if block == nil {
		return nil
	}
	return block.FindAll(name)
}

// textOf extracts the trimmed text of a metadata element. A nil element,
// or one with no text anywhere, yields "".
func textOf(n *opf.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

// textsOf collects the texts of repeated elements in declaration order.
// Elements without text are dropped; nothing is de-duplicated.
func textsOf(ns []*opf.Node) []string {
	var out []string
	for _, n := range ns {
		if t := textOf(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// declaredCover returns the manifest id named by cover metadata, either
// the legacy <meta name="cover" content="id"> form or the EPUB 3
// property="cover-image" form. Best effort: no match means no cross
// reference, never an error.
func declaredCover(block *opf.Node) string {
	if block == nil {
		return ""
	}
	for _, meta := range block.FindAll("meta") {
		if meta.Attr("name") != "cover" && meta.Attr("property") != "cover-image" {
			continue
		}
		if c := meta.Attr("content"); c != "" {
			return c
		}
		if t := textOf(meta); t != "" {
			return t
		}
	}
	return ""
}
