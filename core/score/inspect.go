package score

import (
	"encoding/hex"

	"github.com/antchfx/xmlquery"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
)

// MarkerTag is the staff content element that starts a new part.
const MarkerTag = "VBox"

var (
	markerTitleExpr = xml.MustCompile("Text[style='Title']/text")

	measureExpr      = xml.MustCompile("Score/Staff/Measure")
	vboxExpr         = xml.MustCompile("Score/Staff/VBox")
	clefExpr         = xml.MustCompile("Score/Staff/Measure/voice/Clef")
	lineBreakExpr    = xml.MustCompile("Score/Staff/Measure/LayoutBreak[subtype='line']")
	sectionBreakExpr = xml.MustCompile("Score/Staff/Measure/LayoutBreak[subtype='section']")
	timeSigExpr      = xml.MustCompile("Score/Staff/Measure/voice/TimeSig")
	keySigExpr       = xml.MustCompile("Score/Staff/Measure/voice/KeySig")
)

// IsMarker reports whether n is a part boundary marker.
func IsMarker(n *xmlquery.Node) bool {
	return n != nil && n.Type == xmlquery.ElementNode && n.Data == MarkerTag
}

// MarkerTitles returns the texts of every Title-styled text node inside a marker.
func MarkerTitles(marker *xmlquery.Node) []string {
	nodes := xml.QueryAll(marker, markerTitleExpr)
	titles := make([]string, 0, len(nodes))
	for _, n := range nodes {
		titles = append(titles, n.InnerText())
	}
	return titles
}

// Stats summarizes the structural elements the engines touch.
type Stats struct {
	Measures      int      `json:"measures"`
	VBoxes        int      `json:"vboxes"`
	Clefs         int      `json:"clefs"`
	LineBreaks    int      `json:"line_breaks"`
	SectionBreaks int      `json:"section_breaks"`
	HasTimeSig    bool     `json:"has_time_sig"`
	HasKeySig     bool     `json:"has_key_sig"`
	Titles        []string `json:"titles,omitempty"`
}

// Stats counts structural elements. It fails when the single-staff
// invariant does not hold.
func (d *Document) Stats() (Stats, error) {
	if _, err := d.StaffElement(); err != nil {
		return Stats{}, err
	}

	vboxes := d.QueryAll(vboxExpr)
	s := Stats{
		Measures:      len(d.QueryAll(measureExpr)),
		VBoxes:        len(vboxes),
		Clefs:         len(d.QueryAll(clefExpr)),
		LineBreaks:    len(d.QueryAll(lineBreakExpr)),
		SectionBreaks: len(d.QueryAll(sectionBreakExpr)),
		HasTimeSig:    d.QueryFirst(timeSigExpr) != nil,
		HasKeySig:     d.QueryFirst(keySigExpr) != nil,
	}
	for _, vbox := range vboxes {
		s.Titles = append(s.Titles, MarkerTitles(vbox)...)
	}
	return s, nil
}

// ContainsTimeSig reports whether any measure voice carries a time signature.
func (d *Document) ContainsTimeSig() bool {
	return d.QueryFirst(timeSigExpr) != nil
}

// Fingerprint returns a BLAKE3 digest of the staff content. Two documents
// whose staff content has the same tags, attributes, non-blank text and
// child order produce the same fingerprint regardless of indentation.
func (d *Document) Fingerprint() (string, error) {
	content, err := d.StaffContent()
	if err != nil {
		return "", err
	}

	h := blake3.New()
	for _, n := range content {
		h.Write(xml.Serialize(n, xml.WriteOptions{Indent: " "}))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
