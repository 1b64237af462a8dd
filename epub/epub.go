// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package epub turns the raw bytes of an uploaded EPUB into the
// structured form the shelf server stores: a normalized book record,
// chapters in reading order, binary assets and an optional cover.
package epub

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/readium/readium-shelf-server/epub/opf"
)

// Fatal ingestion errors. Everything else the pipeline hits is recovered
// locally: a chapter, asset or cover that cannot be read shortens the
// result instead of failing it.
var (
	// ErrInvalidArchive reports bytes that are not a readable zip archive.
	ErrInvalidArchive = errors.New("epub: invalid or corrupted archive")

	// ErrInvalidPackage reports a structurally broken publication. The
	// specific conditions below wrap it, so errors.Is works on all of
	// them.
	ErrInvalidPackage = errors.New("epub: invalid package")
)

var (
	errNoContainer  = fmt.Errorf("%w: container descriptor missing", ErrInvalidPackage)
	errNoRootFile   = fmt.Errorf("%w: no rootfile declared", ErrInvalidPackage)
	errNoPackageDoc = fmt.Errorf("%w: package document missing", ErrInvalidPackage)
)

// Diagnostics receives the non fatal findings of an ingestion: skipped
// chapters, missing assets, duplicate ids. The package never writes to a
// logger itself; the caller decides where, if anywhere, these surface.
type Diagnostics interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type discard struct{}

func (discard) Infof(string, ...interface{}) {}
func (discard) Warnf(string, ...interface{}) {}

// Ingest parses one publication from its raw bytes. It is a pure
// function of its input: the same bytes always produce the same result,
// concurrent calls share nothing, and no I/O happens past the byte
// buffer already in hand. A nil diag discards diagnostics.
//
// The error is ErrInvalidArchive or ErrInvalidPackage (possibly
// wrapped); anything survivable is handled by shortening the result.
func Ingest(raw []byte, diag Diagnostics) (*Ingestion, error) {
	if diag == nil {
		diag = discard{}
	}

	arc, err := OpenArchive(raw)
	if err != nil {
		return nil, err
	}

	container, err := locateContainer(arc)
	if err != nil {
		return nil, err
	}

	data, ok := arc.File(container.PackagePath)
	if !ok {
		return nil, errNoPackageDoc
	}
	doc, err := opf.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: package document unreadable: %v", ErrInvalidPackage, err)
	}

	book := &Book{
		PackagePath: container.PackagePath,
		BasePath:    container.BasePath(),
		Metadata:    normalizeMetadata(doc.Metadata, doc.Version),
	}
	book.Manifest = resolveManifest(doc.Manifest, diag)
	book.Spine, err = resolveSpine(doc.Spine, book.Manifest)
	if err != nil {
		return nil, err
	}
	book.deriveItems()

	ing := &Ingestion{
		Book:     book,
		Chapters: extractChapters(arc, book, diag),
		Assets:   classifyAssets(arc, book, diag),
	}
	ing.Cover = resolveCover(arc, book)

	if len(ing.Chapters) < len(book.Spine) {
		diag.Infof("extracted %d of %d spine entries", len(ing.Chapters), len(book.Spine))
	}
	return ing, nil
}
