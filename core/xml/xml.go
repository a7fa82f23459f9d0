// Package xml provides the tree operations the score engine is built on:
// parsing, compiled XPath lookups, element construction, detaching and
// re-attaching subtrees, deep copies and serialization.
//
// Security Notes:
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and does not fetch external entities.
package xml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Parse parses XML data and returns the document node.
// A document without a root element is rejected.
func Parse(data []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	if RootElement(doc) == nil {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return doc, nil
}

// RootElement returns the first element child of a document node.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

// MustCompile compiles an XPath expression and panics if it is invalid.
// It is meant for package-level expressions known at compile time.
func MustCompile(expr string) *xpath.Expr {
	return xpath.MustCompile(expr)
}

// QueryAll evaluates a compiled expression relative to top.
func QueryAll(top *xmlquery.Node, expr *xpath.Expr) []*xmlquery.Node {
	if top == nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(top, expr)
}

// QueryFirst evaluates a compiled expression and returns the first match or nil.
func QueryFirst(top *xmlquery.Node, expr *xpath.Expr) *xmlquery.Node {
	if top == nil {
		return nil
	}
	return xmlquery.QuerySelector(top, expr)
}

// Query compiles and evaluates an ad-hoc expression.
func Query(top *xmlquery.Node, expr string) ([]*xmlquery.Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	return QueryAll(top, compiled), nil
}

// NewDocument creates a document node holding root.
func NewDocument(root *xmlquery.Node) *xmlquery.Node {
	doc := &xmlquery.Node{Type: xmlquery.DocumentNode}
	AppendChild(doc, root)
	return doc
}

// NewElement creates a detached element node.
func NewElement(tag string) *xmlquery.Node {
	return &xmlquery.Node{Type: xmlquery.ElementNode, Data: tag}
}

// NewTextElement creates a detached element holding a single text node.
func NewTextElement(tag, text string) *xmlquery.Node {
	el := NewElement(tag)
	AppendChild(el, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
	return el
}

// AppendChild attaches n as the last child of parent.
// n is detached from any previous parent first.
func AppendChild(parent, n *xmlquery.Node) {
	Detach(n)
	xmlquery.AddChild(parent, n)
}

// PrependChild attaches n as the first child of parent.
func PrependChild(parent, n *xmlquery.Node) {
	Detach(n)
	first := parent.FirstChild
	if first == nil {
		xmlquery.AddChild(parent, n)
		return
	}
	n.Parent = parent
	n.PrevSibling = nil
	n.NextSibling = first
	first.PrevSibling = n
	parent.FirstChild = n
}

// Detach unlinks n from its parent and siblings. Ownership of the subtree
// passes to the caller; it may be re-attached elsewhere or dropped.
func Detach(n *xmlquery.Node) {
	if n == nil {
		return
	}
	if n.Parent != nil {
		xmlquery.RemoveFromTree(n)
	}
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

// ChildElements returns the direct element children of n in document order.
func ChildElements(n *xmlquery.Node) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var children []*xmlquery.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, child)
		}
	}
	return children
}

// ChildElement returns the first direct element child named tag, or nil.
func ChildElement(n *xmlquery.Node, tag string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == tag {
			return child
		}
	}
	return nil
}

// ChildText returns the text of the first child element named tag.
func ChildText(n *xmlquery.Node, tag string) string {
	child := ChildElement(n, tag)
	if child == nil {
		return ""
	}
	return child.InnerText()
}

// SetText replaces all children of n with a single text node.
func SetText(n *xmlquery.Node, text string) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		Detach(child)
		child = next
	}
	xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
}

// Clone returns a deep copy of n with no parent or siblings.
func Clone(n *xmlquery.Node) *xmlquery.Node {
	if n == nil {
		return nil
	}
	dup := &xmlquery.Node{
		Type:         n.Type,
		Data:         n.Data,
		Prefix:       n.Prefix,
		NamespaceURI: n.NamespaceURI,
	}
	if len(n.Attr) > 0 {
		dup.Attr = make([]xmlquery.Attr, len(n.Attr))
		copy(dup.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		xmlquery.AddChild(dup, Clone(child))
	}
	return dup
}

// TrimmedText returns the node's inner text with surrounding whitespace removed.
func TrimmedText(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}
