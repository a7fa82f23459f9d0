package transform

import (
	"fmt"

	"github.com/FocuswithJustin/MuseScoreTools/core/score"
)

// Set selects which transforms a conversion applies.
type Set struct {
	CopyTitles      bool
	RemoveNewlines  bool
	RemoveClefs     bool
	AddSectionBreak bool
	FixKeySignature bool
}

// Step pairs a transform name with its implementation.
type Step struct {
	Name string
	Run  Func
}

// Steps returns the enabled transforms in application order.
func (s Set) Steps() []Step {
	var steps []Step
	if s.CopyTitles {
		steps = append(steps, Step{NamePromoteTitle, PromoteTextToTitle})
	}
	if s.RemoveNewlines {
		steps = append(steps, Step{NameRemoveLineBreaks, RemoveLineBreaks})
	}
	if s.RemoveClefs {
		steps = append(steps, Step{NameRemoveClefs, RemoveClefs})
	}
	if s.AddSectionBreak {
		steps = append(steps, Step{NameAddSectionBreak, AddSectionBreak})
	}
	if s.FixKeySignature {
		steps = append(steps, Step{NameFillKeySignature, FillMissingKeySignature})
	}
	return steps
}

// Empty reports whether no transform is enabled.
func (s Set) Empty() bool {
	return len(s.Steps()) == 0
}

// Apply runs every enabled transform on doc and collects their diagnostics.
// The first error aborts; transforms that already ran keep their edits.
func Apply(doc *score.Document, s Set) (score.Diagnostics, error) {
	var all score.Diagnostics
	for _, step := range s.Steps() {
		diags, err := step.Run(doc)
		if err != nil {
			return all, fmt.Errorf("%s: %w", step.Name, err)
		}
		all = append(all, diags...)
	}
	return all, nil
}
