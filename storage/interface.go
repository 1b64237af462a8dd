package storage

import (
	"errors"
	"io"
)

// ErrNotFound is returned when no item lives under the requested key.
var ErrNotFound = errors.New("item could not be found")

// Item is one stored object.
type Item interface {
	Key() string
	PublicURL() string
	Contents() (io.ReadCloser, error)
}

// Store is the object storage the ingestion output is written to.
// Keys may contain slashes, which group the files of one publication.
type Store interface {
	Add(key string, r io.ReadSeeker) (Item, error)
	Get(key string) (Item, error)
	Remove(key string) error
	List() ([]Item, error)
}
