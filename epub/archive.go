// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// Archive is the fully decompressed content of one uploaded publication,
// keyed by internal path. Paths are case sensitive, forward slash
// separated and carry no leading separator. An Archive is never modified
// after OpenArchive returns, so it can be read without locking.
type Archive struct {
	files map[string][]byte
}

// OpenArchive decompresses a complete zip archive in memory. The upload
// boundary caps the input size; the archive layer accepts whatever it is
// handed.
func OpenArchive(raw []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	arc := &Archive{files: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, f.Name, err)
		}
		arc.files[f.Name] = data
	}
	return arc, nil
}

// File returns the bytes stored under an internal path.
func (a *Archive) File(name string) ([]byte, bool) {
	data, ok := a.files[name]
	return data, ok
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.files)
}
