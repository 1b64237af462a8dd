// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package pack

import (
	"strconv"
	"strings"

	"github.com/readium/readium-shelf-server/index"
	"github.com/readium/readium-shelf-server/logging"
	"github.com/readium/readium-shelf-server/storage"
)

// Sweep removes stored files whose book id is no longer in the index.
// Orphans appear when a deletion is interrupted between the database
// and the storage backend. Files are only stored after their row
// exists, so an in-flight ingestion is never swept.
func Sweep(store storage.Store, idx index.Index) {
	items, err := store.List()
	if err != nil {
		logging.Print("Sweep cannot list the storage: " + err.Error())
		return
	}

	removed := 0
	for _, item := range items {
		id := strings.SplitN(item.Key(), "/", 2)[0]
		if _, err := idx.Get(id); err != index.ErrNotFound {
			continue
		}
		if err := store.Remove(item.Key()); err != nil && err != storage.ErrNotFound {
			logging.Print("Sweep cannot remove " + item.Key() + ": " + err.Error())
			continue
		}
		removed++
	}
	if removed > 0 {
		logging.Print("Sweep removed " + strconv.Itoa(removed) + " orphaned files")
	}
}

// RemoveBookFiles removes every stored file belonging to the given
// book id. A missing file is not an error; the first real failure
// stops the walk so a later sweep can retry the rest.
func RemoveBookFiles(store storage.Store, id string) error {
	items, err := store.List()
	if err != nil {
		return err
	}

	for _, item := range items {
		if !strings.HasPrefix(item.Key(), id+"/") {
			continue
		}
		if err := store.Remove(item.Key()); err != nil && err != storage.ErrNotFound {
			return err
		}
	}
	return nil
}
