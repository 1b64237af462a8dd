// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"bytes"
	"path"

	"golang.org/x/net/html"
)

// resolveCover probes the first reading order document for a cover
// illustration, the convention most publications follow. The probe never
// consults declared cover metadata and it is strictly best effort: any
// failure, from a missing file to broken markup to a panic in the walk,
// means no cover rather than a failed ingestion.
func resolveCover(arc *Archive, book *Book) (cover *CoverImage) {
	defer func() {
		if recover() != nil {
			cover = nil
		}
	}()

	if len(book.Spine) == 0 {
		return nil
	}
	item, ok := book.ItemByID(book.Spine[0].IDRef)
	if !ok {
		return nil
	}

	chapterPath := resolvePath(book.BasePath, item.Href)
	data, ok := arc.File(chapterPath)
	if !ok {
		return nil
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	src := findImageSource(doc)
	if src == "" {
		return nil
	}

	// image references are relative to the chapter, not the package root
	resolved := resolvePath(path.Dir(chapterPath), src)
	img, ok := arc.File(resolved)
	if !ok {
		return nil
	}
	return &CoverImage{Ext: path.Ext(src), Data: img}
}

// findImageSource returns the source reference of the first image in
// document order, whatever the element is nested in: a bare <img> right
// under <body> counts as much as one buried in div wrappers, and SVG
// wrapped covers are picked up through their <image> element.
func findImageSource(n *html.Node) string {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			if src := attrValue(n, "src"); src != "" {
				return src
			}
		case "image":
			if src := attrValue(n, "href"); src != "" {
				return src
			}
			if src := attrValue(n, "xlink:href"); src != "" {
				return src
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src := findImageSource(c); src != "" {
			return src
		}
	}
	return ""
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
