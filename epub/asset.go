// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

// chapterTypes lists the media types whose manifest items are reading
// content rather than binary assets.
var chapterTypes = map[string]bool{
	ContentTypeXhtml: true,
	ContentTypeHtml:  true,
}

// classifyAssets gathers every manifest resource that is not reading
// content, keyed by the href exactly as the manifest declares it. The
// original href is what chapter markup references, so it is the key the
// serving layer needs. A declared file missing from the archive is
// dropped with a warning.
func classifyAssets(arc *Archive, book *Book, diag Diagnostics) map[string][]byte {
	assets := make(map[string][]byte)
	for _, it := range book.Manifest {
		if chapterTypes[it.MediaType] {
			continue
		}
		src := resolvePath(book.BasePath, it.Href)
		data, ok := arc.File(src)
		if !ok {
			diag.Warnf("asset %s declared by the manifest is not in the archive, skipped", src)
			continue
		}
		assets[it.Href] = data
	}
	return assets
}
