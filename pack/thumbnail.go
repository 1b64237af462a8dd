// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package pack

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

const thumbnailJPEGQuality = 80

// makeThumbnail scales a cover down to the given width, keeping the
// aspect ratio, and encodes it as JPEG.
func makeThumbnail(data []byte, width int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if src.Bounds().Dx() > width {
		src = imaging.Resize(src, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderFirstPage rasterizes the first page of the publication with
// go-fitz -> CGO-based solution. Used when the publication itself
// yields no cover image.
func renderFirstPage(raw []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(raw)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpeg.DefaultQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
