// Package archive provides utilities for reading and writing the zip
// archives used by packaged (.mscz) scores.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// ErrEntryNotFound is returned when a named entry is absent from an archive.
var ErrEntryNotFound = errors.New("archive entry not found")

// Reader wraps a zip.ReadCloser with name-based entry lookup.
type Reader struct {
	zr      *zip.ReadCloser
	entries map[string]*zip.File
}

// Open opens the zip archive at path.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, dup := entries[f.Name]; !dup {
			entries[f.Name] = f
		}
	}
	return &Reader{zr: zr, entries: entries}, nil
}

// Close closes the underlying archive.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// Names returns entry names in archive order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.zr.File))
	for _, f := range r.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether the archive contains an entry with the exact name.
func (r *Reader) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// ReadFile reads a specific entry from the archive.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	f, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", name, err)
	}
	return content, nil
}

// ReadFile opens archivePath and reads a single entry.
func ReadFile(archivePath, name string) ([]byte, error) {
	r, err := Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadFile(name)
}
