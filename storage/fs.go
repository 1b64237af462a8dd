package storage

import (
	"io"
	"os"
	"path/filepath"
)

type fsStorage struct {
	dir string
	url string
}

type fsItem struct {
	path string
	key  string
	base string
}

func (i fsItem) Key() string {
	return i.key
}

func (i fsItem) PublicURL() string {
	return i.base + "/" + i.key
}

func (i fsItem) Contents() (io.ReadCloser, error) {
	return os.Open(i.path)
}

func (s fsStorage) itemPath(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

// Add writes the contents of r under key, creating intermediate
// directories as needed.
func (s fsStorage) Add(key string, r io.ReadSeeker) (Item, error) {
	p := s.itemPath(key)
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return nil, err
	}
	file, err := os.Create(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		return nil, err
	}
	return fsItem{path: p, key: key, base: s.url}, nil
}

func (s fsStorage) Get(key string) (Item, error) {
	p := s.itemPath(key)
	if _, err := os.Stat(p); err != nil {
		return nil, ErrNotFound
	}
	return fsItem{path: p, key: key, base: s.url}, nil
}

func (s fsStorage) Remove(key string) error {
	err := os.Remove(s.itemPath(key))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s fsStorage) List() ([]Item, error) {
	var items []Item
	err := filepath.Walk(s.dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		items = append(items, fsItem{path: p, key: filepath.ToSlash(rel), base: s.url})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// NewFileSystem stores items as files under dir. Public URLs are rooted
// at basePath.
func NewFileSystem(dir, basePath string) Store {
	return fsStorage{dir, basePath}
}
