// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"fmt"
	"strings"

	"github.com/readium/readium-shelf-server/epub/opf"
)

// resolveManifest keeps every declared item in document order. Duplicate
// ids are kept too: lookups return the first occurrence, which is what a
// reference into the package resolves to everywhere else in this code.
func resolveManifest(block *opf.Node, diag Diagnostics) []Item {
	if block == nil {
		return nil
	}

	children := block.FindAll("item")
	items := make([]Item, 0, len(children))
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		it := Item{
			ID:        c.Attr("id"),
			Href:      c.Attr("href"),
			MediaType: c.Attr("media-type"),
		}
		if props := strings.Fields(c.Attr("properties")); len(props) > 0 {
			it.Properties = props
			for _, p := range props {
				switch p {
				case "nav":
					it.Nav = true
				case "cover-image":
					it.CoverImage = true
				}
			}
		}
		if seen[it.ID] {
			diag.Warnf("manifest declares id %q more than once, first occurrence wins", it.ID)
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items
}

// resolveSpine reads the reading order and validates every entry against
// the manifest before any content work starts: one dangling idref fails
// the whole ingestion, atomically.
func resolveSpine(block *opf.Node, items []Item) ([]SpineItem, error) {
	if block == nil {
		return nil, nil
	}

	refs := block.FindAll("itemref")
	spine := make([]SpineItem, 0, len(refs))
	for _, ref := range refs {
		s := SpineItem{IDRef: ref.Attr("idref"), Linear: true}
		if ref.Attr("linear") == "no" {
			s.Linear = false
		}
		if _, ok := itemByID(items, s.IDRef); !ok {
			return nil, fmt.Errorf("%w: spine references unknown manifest id %q", ErrInvalidPackage, s.IDRef)
		}
		spine = append(spine, s)
	}
	return spine, nil
}

func itemByID(items []Item, id string) (*Item, bool) {
	for i := range items {
		if items[i].ID == id {
			return &items[i], true
		}
	}
	return nil, false
}

// deriveItems records the conventional special members of the manifest:
// the navigation document, the declared cover image and the legacy NCX
// table of contents. First match wins for each.
func (b *Book) deriveItems() {
	for i := range b.Manifest {
		it := &b.Manifest[i]
		if it.Nav && b.NavItem == nil {
			b.NavItem = it
		}
		if it.CoverImage && b.CoverItem == nil {
			b.CoverItem = it
		}
		if it.MediaType == ContentTypeNcx && b.NCXItem == nil {
			b.NCXItem = it
		}
	}
}
