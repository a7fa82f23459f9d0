package recombine

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	apperrors "github.com/FocuswithJustin/MuseScoreTools/core/errors"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
)

// OpSplit names split diagnostics.
const OpSplit = "split"

// Part is one named slice of staff content produced by Split.
type Part struct {
	Name string
	Doc  *score.Document
}

// SyntheticName is the name given to part n (1-based) when its marker has no
// usable title.
func SyntheticName(n int) string {
	return fmt.Sprintf("unknown_title_%d", n)
}

// Split cuts doc's staff content into parts, one per VBox marker. Each part
// holds its marker and the elements up to the next marker, inside a copy of
// doc with the staff emptied. doc itself is not modified.
//
// A staff without any VBox yields no parts. Content before the first VBox has
// no part to belong to and is rejected with ErrInvalidStructure.
func Split(doc *score.Document) ([]Part, score.Diagnostics, error) {
	content, err := doc.StaffContent()
	if err != nil {
		return nil, nil, err
	}

	leading := 0
	for leading < len(content) && !score.IsMarker(content[leading]) {
		leading++
	}
	if leading == len(content) {
		return nil, nil, nil
	}
	if leading > 0 {
		return nil, nil, apperrors.NewStructure(score.StaffPath, leading, "no content before the first "+score.MarkerTag)
	}

	template := doc.Clone()
	if _, err := template.DetachAllContent(); err != nil {
		return nil, nil, err
	}

	var (
		diags  score.Diagnostics
		names  []string
		groups [][]*xmlquery.Node
	)
	for _, n := range content {
		if score.IsMarker(n) {
			names = append(names, partName(n, len(names)+1, &diags))
			groups = append(groups, nil)
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], n)
	}

	parts := make([]Part, len(groups))
	for i, group := range groups {
		partDoc := template.Clone()
		for _, n := range group {
			if err := partDoc.AppendContent(xml.Clone(n)); err != nil {
				return nil, nil, err
			}
		}
		parts[i] = Part{Name: names[i], Doc: partDoc}
	}
	return parts, diags, nil
}

func partName(marker *xmlquery.Node, index int, diags *score.Diagnostics) string {
	titles := score.MarkerTitles(marker)
	switch {
	case len(titles) == 1 && strings.TrimSpace(SanitizeName(titles[0])) != "":
		return titles[0]
	case len(titles) == 1:
		diags.Add(OpSplit, "part %d has a blank title, using %s", index, SyntheticName(index))
	case len(titles) > 1:
		diags.Add(OpSplit, "part %d has %d title candidates, using %s", index, len(titles), SyntheticName(index))
	}
	return SyntheticName(index)
}
