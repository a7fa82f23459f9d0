package recombine

import (
	"fmt"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/MuseScoreTools/core/container"
	apperrors "github.com/FocuswithJustin/MuseScoreTools/core/errors"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
)

// Merge replaces the staff content of main with the staff content of others,
// in order, and returns main. Content is moved, so the documents in others
// must not be reused afterwards. Every document is validated before main is
// touched.
func Merge(main *score.Document, others []*score.Document) (*score.Document, error) {
	if len(others) == 0 {
		return nil, fmt.Errorf("merge: %w", apperrors.ErrEmptyInput)
	}
	if _, err := main.StaffElement(); err != nil {
		return nil, fmt.Errorf("merge target: %w", err)
	}

	// Snapshot each source's content before detaching main's, so main may
	// also appear among the sources.
	contents := make([][]*xmlquery.Node, len(others))
	for i, other := range others {
		content, err := other.StaffContent()
		if err != nil {
			return nil, fmt.Errorf("merge source %d: %w", i+1, err)
		}
		contents[i] = content
	}

	if _, err := main.DetachAllContent(); err != nil {
		return nil, err
	}
	for _, content := range contents {
		if err := main.AppendContent(content...); err != nil {
			return nil, err
		}
	}
	return main, nil
}

// MergeFiles merges the content of every source, in order, into a copy of the
// first source and writes the result to output. The first source serves as
// the template for everything outside the staff.
func MergeFiles(sources []Source, output string, opts container.Options) (*score.Document, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("merge: %w", apperrors.ErrEmptyInput)
	}

	docs := make([]*score.Document, len(sources))
	for i, src := range sources {
		doc, err := Resolve(src)
		if err != nil {
			return nil, fmt.Errorf("merge source %s: %w", src, err)
		}
		docs[i] = doc
	}

	merged, err := Merge(docs[0].Clone(), docs)
	if err != nil {
		return nil, err
	}
	if err := container.SaveWithOptions(merged, output, opts); err != nil {
		return nil, err
	}
	return merged, nil
}
