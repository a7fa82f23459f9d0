// Package score provides the in-memory model of a MuseScore document and the
// fixed path accessors the transform and recombination engines work through.
//
// A Document owns one tree. Every accessor re-evaluates its path against the
// current tree, so the single-staff invariant is checked on each call rather
// than cached across mutations.
package score

import (
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	apperrors "github.com/FocuswithJustin/MuseScoreTools/core/errors"
	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
)

// StaffPath is the location of the staff element relative to the root element.
const StaffPath = "Score/Staff"

var staffExpr = xml.MustCompile(StaffPath)

// Document is a parsed score tree. It is not safe for concurrent use.
type Document struct {
	tree *xmlquery.Node
}

// Parse parses score XML into a Document.
func Parse(data []byte) (*Document, error) {
	tree, err := xml.Parse(data)
	if err != nil {
		return nil, apperrors.NewParse("score", "", err.Error(), err)
	}
	return &Document{tree: tree}, nil
}

// New wraps an existing document node.
func New(tree *xmlquery.Node) *Document {
	return &Document{tree: tree}
}

// Tree returns the document node.
func (d *Document) Tree() *xmlquery.Node {
	return d.tree
}

// Root returns the root element (normally <museScore>).
func (d *Document) Root() *xmlquery.Node {
	return xml.RootElement(d.tree)
}

// QueryAll evaluates expr relative to the root element.
func (d *Document) QueryAll(expr *xpath.Expr) []*xmlquery.Node {
	return xml.QueryAll(d.Root(), expr)
}

// QueryFirst evaluates expr relative to the root element and returns the first match.
func (d *Document) QueryFirst(expr *xpath.Expr) *xmlquery.Node {
	return xml.QueryFirst(d.Root(), expr)
}

// StaffElement returns the single Score/Staff element.
// It fails with ErrInvalidStructure when zero or several staffs exist.
func (d *Document) StaffElement() (*xmlquery.Node, error) {
	staffs := d.QueryAll(staffExpr)
	if len(staffs) != 1 {
		return nil, apperrors.NewStructure(StaffPath, len(staffs), "exactly one staff")
	}
	return staffs[0], nil
}

// StaffContent returns the direct element children of the staff in document order.
// The slice is a snapshot; the nodes themselves are live and still attached.
func (d *Document) StaffContent() ([]*xmlquery.Node, error) {
	staff, err := d.StaffElement()
	if err != nil {
		return nil, err
	}
	return xml.ChildElements(staff), nil
}

// DetachAllContent removes every child of the staff and returns the element
// children as owned subtrees, in their original order. Whitespace between
// elements is discarded.
func (d *Document) DetachAllContent() ([]*xmlquery.Node, error) {
	staff, err := d.StaffElement()
	if err != nil {
		return nil, err
	}

	var owned []*xmlquery.Node
	for child := staff.FirstChild; child != nil; {
		next := child.NextSibling
		xml.Detach(child)
		if child.Type == xmlquery.ElementNode {
			owned = append(owned, child)
		}
		child = next
	}
	return owned, nil
}

// AppendContent attaches nodes to the end of the staff, detaching each from
// any tree it still belongs to.
func (d *Document) AppendContent(nodes ...*xmlquery.Node) error {
	staff, err := d.StaffElement()
	if err != nil {
		return err
	}
	for _, n := range nodes {
		xml.AppendChild(staff, n)
	}
	return nil
}

// Clone returns a fully independent deep copy.
func (d *Document) Clone() *Document {
	return &Document{tree: xml.Clone(d.tree)}
}

// Bytes serializes the document as UTF-8 XML.
func (d *Document) Bytes(opts xml.WriteOptions) []byte {
	return xml.Serialize(d.tree, opts)
}
