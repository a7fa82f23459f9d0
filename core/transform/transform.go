// Package transform implements the structural edits applied to a score.
//
// Every transform mutates the document in place, is independent of the
// others and can be applied in any order. Re-applying a transform leaves the
// tree as it was after the first application. Ambiguous input yields a
// Diagnostic and no mutation; a violated single-staff invariant is an error.
package transform

import (
	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/MuseScoreTools/core/score"
	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
)

// Transform names, as used in diagnostics and configuration.
const (
	NameRemoveClefs      = "remove_clefs"
	NameRemoveLineBreaks = "remove_line_breaks"
	NameAddSectionBreak  = "add_section_break"
	NamePromoteTitle     = "promote_text_to_title"
	NameFillKeySignature = "fill_missing_key_signature"
)

const (
	defaultVBoxHeight = "4"
	openKeyAccidental = "0"
)

var (
	clefExpr         = xml.MustCompile("Score/Staff/Measure/voice/Clef")
	lineBreakExpr    = xml.MustCompile("Score/Staff/Measure/LayoutBreak[subtype='line']")
	lastMeasureExpr  = xml.MustCompile("Score/Staff/Measure[last()]")
	sectionBreakExpr = xml.MustCompile("LayoutBreak[subtype='section']")
	staffTextExpr    = xml.MustCompile("Score/Staff/Measure/voice/StaffText/text")
	vboxExpr         = xml.MustCompile("Score/Staff/VBox")
	subtitleExpr     = xml.MustCompile("Text[style='Subtitle']")
	firstVoiceExpr   = xml.MustCompile("Score/Staff/Measure[1]/voice[1]")
	firstKeySigExpr  = xml.MustCompile("Score/Staff/Measure[1]/voice/KeySig")
)

// Func is the common signature of all transforms.
type Func func(doc *score.Document) (score.Diagnostics, error)

// RemoveClefs detaches every Clef inside a measure voice.
func RemoveClefs(doc *score.Document) (score.Diagnostics, error) {
	if _, err := doc.StaffElement(); err != nil {
		return nil, err
	}
	for _, clef := range doc.QueryAll(clefExpr) {
		xml.Detach(clef)
	}
	return nil, nil
}

// RemoveLineBreaks detaches every measure-level LayoutBreak of subtype "line".
func RemoveLineBreaks(doc *score.Document) (score.Diagnostics, error) {
	if _, err := doc.StaffElement(); err != nil {
		return nil, err
	}
	for _, lb := range doc.QueryAll(lineBreakExpr) {
		xml.Detach(lb)
	}
	return nil, nil
}

// AddSectionBreak appends a section LayoutBreak to the last measure unless
// one is already there. A staff without measures is left alone.
func AddSectionBreak(doc *score.Document) (score.Diagnostics, error) {
	if _, err := doc.StaffElement(); err != nil {
		return nil, err
	}
	last := doc.QueryFirst(lastMeasureExpr)
	if last == nil {
		return nil, nil
	}
	if xml.QueryFirst(last, sectionBreakExpr) != nil {
		return nil, nil
	}

	layoutBreak := xml.NewElement("LayoutBreak")
	xml.AppendChild(layoutBreak, xml.NewTextElement("subtype", "section"))
	xml.AppendChild(last, layoutBreak)
	return nil, nil
}

// PromoteTextToTitle moves the single StaffText found in the measures into
// the Subtitle text of the staff's VBox, creating the VBox and the Subtitle
// when they are missing.
func PromoteTextToTitle(doc *score.Document) (score.Diagnostics, error) {
	staff, err := doc.StaffElement()
	if err != nil {
		return nil, err
	}

	var diags score.Diagnostics
	texts := doc.QueryAll(staffTextExpr)
	if len(texts) != 1 {
		diags.Add(NamePromoteTitle, "expected exactly one staff text, found %d", len(texts))
		return diags, nil
	}
	source := texts[0]
	title := source.InnerText()

	vboxes := doc.QueryAll(vboxExpr)
	if len(vboxes) > 1 {
		diags.Add(NamePromoteTitle, "expected at most one VBox, found %d", len(vboxes))
		return diags, nil
	}

	var vbox, subtitle *xmlquery.Node
	if len(vboxes) == 1 {
		vbox = vboxes[0]
		subtitles := xml.QueryAll(vbox, subtitleExpr)
		if len(subtitles) > 1 {
			diags.Add(NamePromoteTitle, "expected at most one subtitle, found %d", len(subtitles))
			return diags, nil
		}
		if len(subtitles) == 1 {
			subtitle = subtitles[0]
		}
	}

	// All checks passed; mutate from here on.
	if vbox == nil {
		vbox = xml.NewElement("VBox")
		xml.AppendChild(vbox, xml.NewTextElement("height", defaultVBoxHeight))
		xml.PrependChild(staff, vbox)
	}
	if subtitle == nil {
		subtitle = xml.NewElement("Text")
		xml.AppendChild(subtitle, xml.NewTextElement("style", "Subtitle"))
		xml.AppendChild(vbox, subtitle)
	}
	if text := xml.ChildElement(subtitle, "text"); text != nil {
		xml.SetText(text, title)
	} else {
		xml.AppendChild(subtitle, xml.NewTextElement("text", title))
	}

	xml.Detach(source.Parent)
	return nil, nil
}

// FillMissingKeySignature inserts an empty key signature (no accidentals) as
// the first element of the first measure's voice when that measure has none.
func FillMissingKeySignature(doc *score.Document) (score.Diagnostics, error) {
	if _, err := doc.StaffElement(); err != nil {
		return nil, err
	}
	if doc.QueryFirst(firstKeySigExpr) != nil {
		return nil, nil
	}
	voice := doc.QueryFirst(firstVoiceExpr)
	if voice == nil {
		return nil, nil
	}

	keySig := xml.NewElement("KeySig")
	xml.AppendChild(keySig, xml.NewTextElement("accidental", openKeyAccidental))
	xml.PrependChild(voice, keySig)
	return nil, nil
}
