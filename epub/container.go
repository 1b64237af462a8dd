// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
)

// Container locates the package document inside the archive.
type Container struct {
	PackagePath string
}

// BasePath returns the directory the package document lives in, "" when
// it sits at the archive root. Manifest hrefs are relative to it.
func (c Container) BasePath() string {
	dir := path.Dir(c.PackagePath)
	if dir == "." {
		return ""
	}
	return dir
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// locateContainer reads META-INF/container.xml, which every conforming
// publication carries at that exact path, and keeps the first declared
// rootfile.
func locateContainer(arc *Archive) (Container, error) {
	data, ok := arc.File(ContainerFile)
	if !ok {
		return Container{}, errNoContainer
	}

	roots, err := findRootFiles(bytes.NewReader(data))
	if err != nil {
		return Container{}, fmt.Errorf("%w: container descriptor unreadable: %v", ErrInvalidPackage, err)
	}
	if len(roots) == 0 || roots[0].FullPath == "" {
		return Container{}, errNoRootFile
	}
	return Container{PackagePath: roots[0].FullPath}, nil
}

func findRootFiles(r io.Reader) ([]rootFile, error) {
	xd := xml.NewDecoder(r)
	var roots []rootFile
	for x, err := xd.Token(); x != nil && err == nil; x, err = xd.Token() {
		if x, ok := x.(xml.StartElement); ok {
			if x.Name.Local == RootFileElement {
				var file rootFile
				err = xd.DecodeElement(&file, &x)
				if err != nil {
					return nil, err
				}
				roots = append(roots, file)
			}
		}
	}
	return roots, nil
}
