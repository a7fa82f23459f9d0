// Package recombine merges the staff content of several scores into one and
// splits one score into parts at its VBox markers.
package recombine

import (
	"github.com/FocuswithJustin/MuseScoreTools/core/container"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
)

// Source is either a path to load or an already loaded document.
// Construct one with FromPath or FromDocument.
type Source interface {
	resolve() (*score.Document, error)
	String() string
}

type pathSource struct {
	path string
}

func (s pathSource) resolve() (*score.Document, error) {
	return container.Load(s.path)
}

func (s pathSource) String() string {
	return s.path
}

type documentSource struct {
	doc *score.Document
}

func (s documentSource) resolve() (*score.Document, error) {
	return s.doc, nil
}

func (s documentSource) String() string {
	return "<document>"
}

// FromPath returns a Source that loads path through the container codec.
func FromPath(path string) Source {
	return pathSource{path: path}
}

// FromDocument returns a Source wrapping a loaded document.
func FromDocument(doc *score.Document) Source {
	return documentSource{doc: doc}
}

// FromPaths converts a list of paths.
func FromPaths(paths []string) []Source {
	sources := make([]Source, len(paths))
	for i, p := range paths {
		sources[i] = FromPath(p)
	}
	return sources
}

// Resolve loads or returns the document behind s.
func Resolve(s Source) (*score.Document, error) {
	return s.resolve()
}
