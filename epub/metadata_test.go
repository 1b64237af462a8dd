// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"strings"
	"testing"

	"github.com/readium/readium-shelf-server/epub/opf"
)

func parseMetadata(t *testing.T, src string) Metadata {
	t.Helper()
	doc, err := opf.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return normalizeMetadata(doc.Metadata, doc.Version)
}

func TestMetadataDefaultTitle(t *testing.T) {
	cases := []string{
		`<package version="2.0"/>`,
		`<package version="2.0"><metadata/></package>`,
		`<package version="2.0"><metadata><dc:title xmlns:dc="http://purl.org/dc/elements/1.1/">   </dc:title></metadata></package>`,
	}
	for _, src := range cases {
		if m := parseMetadata(t, src); m.Title != "Untitled" {
			t.Errorf("title = %q, want %q", m.Title, "Untitled")
		}
	}
}

func TestMetadataPrefixTolerance(t *testing.T) {
	prefixed := parseMetadata(t, `<opf:package xmlns:opf="http://www.idpf.org/2007/opf" version="2.0">
  <opf:metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Same Book</dc:title>
  </opf:metadata>
</opf:package>`)
	plain := parseMetadata(t, `<package version="2.0">
  <metadata>
    <title>Same Book</title>
  </metadata>
</package>`)

	if prefixed.Title != "Same Book" || plain.Title != "Same Book" {
		t.Errorf("prefixed = %q, plain = %q, want both %q", prefixed.Title, plain.Title, "Same Book")
	}
}

func TestMetadataAuthors(t *testing.T) {
	m := parseMetadata(t, `<package version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:creator opf:role="aut" opf:file-as="Writer, Ada">Ada Writer</dc:creator>
    <dc:creator/>
    <dc:creator><span>Deep Name</span></dc:creator>
  </metadata>
</package>`)

	want := []string{"Ada Writer", "Deep Name"}
	if len(m.Authors) != len(want) {
		t.Fatalf("authors = %v, want %v", m.Authors, want)
	}
	for i := range want {
		if m.Authors[i] != want[i] {
			t.Errorf("authors[%d] = %q, want %q", i, m.Authors[i], want[i])
		}
	}
	if m.Author != "Ada Writer" {
		t.Errorf("author = %q, want first creator", m.Author)
	}
}

func TestMetadataSingleCreator(t *testing.T) {
	m := parseMetadata(t, `<package version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:creator>Solo</dc:creator>
  </metadata>
</package>`)

	if m.Author != "Solo" || len(m.Authors) != 1 {
		t.Errorf("author = %q authors = %v, want a single entry", m.Author, m.Authors)
	}
}

func TestMetadataNoCreators(t *testing.T) {
	m := parseMetadata(t, `<package version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Anonymous</dc:title>
  </metadata>
</package>`)

	if m.Author != "" || m.Authors != nil {
		t.Errorf("author = %q authors = %v, want none", m.Author, m.Authors)
	}
}

func TestMetadataSubjectsKeepOrderAndDuplicates(t *testing.T) {
	m := parseMetadata(t, `<package version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:subject>Fiction</dc:subject>
    <dc:subject>Sea Stories</dc:subject>
    <dc:subject>Fiction</dc:subject>
  </metadata>
</package>`)

	want := []string{"Fiction", "Sea Stories", "Fiction"}
	if len(m.Subjects) != len(want) {
		t.Fatalf("subjects = %v, want %v", m.Subjects, want)
	}
	for i := range want {
		if m.Subjects[i] != want[i] {
			t.Errorf("subjects[%d] = %q, want %q", i, m.Subjects[i], want[i])
		}
	}
}

func TestMetadataScalars(t *testing.T) {
	m := parseMetadata(t, `<package version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:publisher>Readium Press</dc:publisher>
    <dc:language>fr</dc:language>
    <dc:identifier opf:scheme="ISBN">9780000000001</dc:identifier>
    <dc:description>About the sea.</dc:description>
    <dc:date>1851-10-18</dc:date>
    <dc:rights>Public domain</dc:rights>
  </metadata>
</package>`)

	if m.Publisher != "Readium Press" {
		t.Errorf("publisher = %q", m.Publisher)
	}
	if m.Language != "fr" {
		t.Errorf("language = %q", m.Language)
	}
	if m.Isbn != "9780000000001" {
		t.Errorf("isbn = %q", m.Isbn)
	}
	if m.Description != "About the sea." {
		t.Errorf("description = %q", m.Description)
	}
	if m.Date != "1851-10-18" {
		t.Errorf("date = %q", m.Date)
	}
	if m.Rights != "Public domain" {
		t.Errorf("rights = %q", m.Rights)
	}
}

func TestMetadataDeclaredCover(t *testing.T) {
	legacy := parseMetadata(t, `<package version="2.0">
  <metadata><meta name="cover" content="cover-id"/></metadata>
</package>`)
	if legacy.Cover != "cover-id" {
		t.Errorf("legacy cover = %q, want %q", legacy.Cover, "cover-id")
	}

	property := parseMetadata(t, `<package version="3.0">
  <metadata><meta property="cover-image">cov3</meta></metadata>
</package>`)
	if property.Cover != "cov3" {
		t.Errorf("property cover = %q, want %q", property.Cover, "cov3")
	}

	none := parseMetadata(t, `<package version="3.0">
  <metadata><meta property="dcterms:modified">2024-01-01</meta></metadata>
</package>`)
	if none.Cover != "" {
		t.Errorf("cover = %q, want none", none.Cover)
	}
}

func TestMetadataVersionPassedThrough(t *testing.T) {
	if m := parseMetadata(t, `<package version="2.0"><metadata/></package>`); m.Version != "2.0" {
		t.Errorf("version = %q, want %q", m.Version, "2.0")
	}
	if m := parseMetadata(t, `<package><metadata/></package>`); m.Version != "" {
		t.Errorf("version = %q, want empty", m.Version)
	}
}
