// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

const (
	ContainerFile   = "META-INF/container.xml"
	RootFileElement = "rootfile"

	ContentTypeXhtml = "application/xhtml+xml"
	ContentTypeHtml  = "text/html"
	ContentTypeNcx   = "application/x-dtbncx+xml"
	ContentTypeEpub  = "application/epub+zip"
)

type (
	// Metadata is the normalized publication metadata. Every field except
	// Title is optional; a publication that declares nothing is still a
	// valid, if anonymous, book.
	Metadata struct {
		Title       string   `json:"title"`
		Author      string   `json:"author,omitempty"`
		Authors     []string `json:"authors,omitempty"`
		Publisher   string   `json:"publisher,omitempty"`
		Language    string   `json:"language,omitempty"`
		Isbn        string   `json:"isbn,omitempty"`
		Description string   `json:"description,omitempty"`
		Subjects    []string `json:"subjects,omitempty"`
		Date        string   `json:"date,omitempty"`
		Rights      string   `json:"rights,omitempty"`
		// Cover is the manifest id named by legacy cover metadata,
		// kept as an informational cross reference.
		Cover string `json:"cover,omitempty"`
		// Version is the package format version as declared.
		Version string `json:"version,omitempty"`
	}

	// Item is one manifest entry.
	Item struct {
		ID         string   `json:"id"`
		Href       string   `json:"href"`
		MediaType  string   `json:"media-type"`
		Properties []string `json:"properties,omitempty"`
		Nav        bool     `json:"nav,omitempty"`
		CoverImage bool     `json:"cover-image,omitempty"`
	}

	// SpineItem is one reading order entry. Linear is true unless the
	// package declares the literal value "no".
	SpineItem struct {
		IDRef  string `json:"idref"`
		Linear bool   `json:"linear"`
	}

	// Chapter is one extracted reading order document. Number and
	// SpineIndex always reflect the spine position, so a skipped
	// unreadable chapter leaves a visible gap instead of renumbering
	// what follows.
	Chapter struct {
		Number     int    `json:"number"`
		SpineIndex int    `json:"spine-index"`
		Title      string `json:"title,omitempty"`
		Path       string `json:"path"`
		WordCount  int    `json:"word-count"`
		Content    string `json:"content,omitempty"`
	}

	// CoverImage is a cover inferred from the first reading order
	// document. Ext is taken verbatim from the image reference, leading
	// dot included.
	CoverImage struct {
		Ext  string
		Data []byte
	}

	// Book is the structural outcome of parsing one publication.
	Book struct {
		Metadata    Metadata
		Manifest    []Item
		Spine       []SpineItem
		PackagePath string
		BasePath    string

		// Informational cross references into Manifest.
		NavItem   *Item
		CoverItem *Item
		NCXItem   *Item
	}

	// Ingestion is the complete result of ingesting one archive: the
	// parsed book, its chapters in reading order, its binary assets
	// keyed by declared href, and an optional inferred cover.
	Ingestion struct {
		Book     *Book
		Chapters []Chapter
		Assets   map[string][]byte
		Cover    *CoverImage
	}
)

// ItemByID returns the first manifest item declared with the given id.
// When a package declares the same id twice, the first occurrence wins.
func (b *Book) ItemByID(id string) (*Item, bool) {
	return itemByID(b.Manifest, id)
}
