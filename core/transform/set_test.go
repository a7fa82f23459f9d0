package transform

import (
	"errors"
	"testing"

	apperrors "github.com/FocuswithJustin/MuseScoreTools/core/errors"
)

func TestSetSteps(t *testing.T) {
	all := Set{
		CopyTitles:      true,
		RemoveNewlines:  true,
		RemoveClefs:     true,
		AddSectionBreak: true,
		FixKeySignature: true,
	}
	want := []string{NamePromoteTitle, NameRemoveLineBreaks, NameRemoveClefs, NameAddSectionBreak, NameFillKeySignature}

	steps := all.Steps()
	if len(steps) != len(want) {
		t.Fatalf("Steps() = %d, want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.Name != want[i] {
			t.Errorf("step %d = %s, want %s", i, step.Name, want[i])
		}
	}

	if !(Set{}).Empty() {
		t.Error("zero Set should be empty")
	}
	if (Set{RemoveClefs: true}).Empty() {
		t.Error("Set with one toggle should not be empty")
	}
}

func TestApply(t *testing.T) {
	doc := mustParse(t, fullScore)

	diags, err := Apply(doc, Set{CopyTitles: true, RemoveClefs: true, FixKeySignature: true})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if n := count(t, doc, "//Clef"); n != 0 {
		t.Errorf("clefs = %d, want 0", n)
	}
	if n := count(t, doc, "Score/Staff/VBox"); n != 1 {
		t.Errorf("VBoxes = %d, want 1", n)
	}
	if n := count(t, doc, "//LayoutBreak[subtype='line']"); n != 2 {
		t.Errorf("line breaks = %d, want 2 (not enabled)", n)
	}
}

func TestApply_CollectsDiagnostics(t *testing.T) {
	doc := mustParse(t, `<museScore><Score><Staff><Measure><voice><Clef/></voice></Measure></Staff></Score></museScore>`)

	diags, err := Apply(doc, Set{CopyTitles: true, RemoveClefs: true})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	if n := count(t, doc, "//Clef"); n != 0 {
		t.Error("later transforms should still run after a diagnostic")
	}
}

func TestApply_InvalidStructure(t *testing.T) {
	doc := mustParse(t, `<museScore><Score/></museScore>`)
	_, err := Apply(doc, Set{RemoveClefs: true})
	if !errors.Is(err, apperrors.ErrInvalidStructure) {
		t.Errorf("Apply error = %v, want ErrInvalidStructure", err)
	}
}
