package xml

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Encoding is the character encoding named by every serialized declaration.
// Parsed input is always decoded to UTF-8, whatever the source declared.
const Encoding = "UTF-8"

// WriteOptions controls serialization.
type WriteOptions struct {
	// Indent re-indents element content when non-empty. Text is trimmed and
	// whitespace-only text between elements is dropped in that mode. An
	// empty Indent writes every text node verbatim.
	Indent string
}

func (o WriteOptions) outputOptions() []xmlquery.OutputOption {
	opts := []xmlquery.OutputOption{xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport()}
	if o.Indent == "" {
		return append(opts, xmlquery.WithPreserveSpace())
	}
	return append(opts, xmlquery.WithoutPreserveSpace(), xmlquery.WithIndentation(o.Indent))
}

// Serialize converts a document (or any subtree) back to UTF-8 XML bytes.
func Serialize(n *xmlquery.Node, opts WriteOptions) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, n, opts)
	return buf.Bytes()
}

// Write serializes n to w. A document node is written as an XML declaration
// naming Encoding, then each top-level node on its own line. Whitespace
// between top-level nodes is not kept.
func Write(w io.Writer, n *xmlquery.Node, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	if n.Type != xmlquery.DocumentNode {
		if err := writeNode(bw, n, opts); err != nil {
			return err
		}
		return bw.Flush()
	}

	if err := writeNode(bw, Declaration(n), opts); err != nil {
		return err
	}
	bw.WriteString("\n")
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.DeclarationNode {
			continue
		}
		if child.Type == xmlquery.TextNode && strings.TrimSpace(child.Data) == "" {
			continue
		}
		if err := writeNode(bw, child, opts); err != nil {
			return err
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// writeNode renders n with xmlquery. The indenter opens every element on a
// new line, so that first newline is dropped in indented mode.
func writeNode(w io.Writer, n *xmlquery.Node, opts WriteOptions) error {
	var buf bytes.Buffer
	if err := n.WriteWithOptions(&buf, opts.outputOptions()...); err != nil {
		return err
	}
	out := buf.Bytes()
	if opts.Indent != "" {
		out = bytes.TrimPrefix(out, []byte("\n"))
	}
	_, err := w.Write(out)
	return err
}

// Declaration returns the XML declaration written for doc: the document's
// own version and extra pseudo-attributes, with encoding set to Encoding.
// doc itself is not modified.
func Declaration(doc *xmlquery.Node) *xmlquery.Node {
	version := "1.0"
	var rest []xmlquery.Attr
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.DeclarationNode {
			continue
		}
		for _, attr := range child.Attr {
			switch attr.Name.Local {
			case "version":
				version = attr.Value
			case "encoding":
			default:
				rest = append(rest, attr)
			}
		}
		break
	}

	decl := &xmlquery.Node{Type: xmlquery.DeclarationNode, Data: "xml"}
	xmlquery.AddAttr(decl, "version", version)
	xmlquery.AddAttr(decl, "encoding", Encoding)
	decl.Attr = append(decl.Attr, rest...)
	return decl
}
