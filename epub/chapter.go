// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"bytes"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractChapters walks the spine in order. A spine entry whose file is
// absent or unparseable is skipped with a warning: one broken chapter
// must not lose the book. Number and SpineIndex keep the spine position
// either way.
func extractChapters(arc *Archive, book *Book, diag Diagnostics) []Chapter {
	chapters := make([]Chapter, 0, len(book.Spine))
	for i, s := range book.Spine {
		// spine resolution has already validated the reference
		item, _ := book.ItemByID(s.IDRef)

		src := resolvePath(book.BasePath, item.Href)
		data, ok := arc.File(src)
		if !ok {
			diag.Warnf("chapter %s is not in the archive, skipped", src)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			diag.Warnf("chapter %s could not be parsed, skipped: %v", src, err)
			continue
		}

		chapters = append(chapters, Chapter{
			Number:     i + 1,
			SpineIndex: i,
			Title:      strings.TrimSpace(doc.Find("title").First().Text()),
			Path:       src,
			WordCount:  countWords(doc),
			Content:    strings.TrimSpace(string(data)),
		})
	}
	return chapters
}

// countWords counts the whitespace separated tokens in the rendered text
// of the body. Head metadata never counts, and any run of whitespace is
// one separator, so reformatting a document cannot change its count.
func countWords(doc *goquery.Document) int {
	return len(strings.Fields(doc.Find("body").Text()))
}

// resolvePath joins an href to the directory it is relative to and
// normalizes the result to an archive path.
func resolvePath(base, href string) string {
	if base == "" {
		return path.Clean(href)
	}
	return path.Join(base, href)
}
