// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"strings"
	"testing"
)

func TestAssetsKeyedByDeclaredHref(t *testing.T) {
	ing, err := Ingest(buildZip(t, testBook()), nil)
	if err != nil {
		t.Fatal(err)
	}
	data, ok := ing.Assets["images/cover.jpg"]
	if !ok {
		t.Fatalf("assets = %v, want key %q", assetKeys(ing), "images/cover.jpg")
	}
	if string(data) != "JPEGDATA" {
		t.Errorf("asset bytes = %q, want %q", data, "JPEGDATA")
	}
}

func TestAssetsExcludeChapterTypes(t *testing.T) {
	ing, err := Ingest(buildZip(t, testBook()), nil)
	if err != nil {
		t.Fatal(err)
	}
	for key := range ing.Assets {
		if strings.HasSuffix(key, ".xhtml") {
			t.Errorf("chapter typed item %q classified as asset", key)
		}
	}
}

func TestAssetsSkipMissingFile(t *testing.T) {
	files := testBook()
	delete(files, "OEBPS/toc.ncx")

	diag := &testDiag{}
	ing, err := Ingest(buildZip(t, files), diag)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ing.Assets["toc.ncx"]; ok {
		t.Error("missing asset should be skipped, not stored empty")
	}
	if _, ok := ing.Assets["images/cover.jpg"]; !ok {
		t.Error("surviving asset should still be classified")
	}
	if len(diag.warns) == 0 {
		t.Error("expected a warning for the missing asset file")
	}
}
