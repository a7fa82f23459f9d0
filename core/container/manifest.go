package container

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
)

// Fixed entry paths inside a packaged score.
const (
	ManifestPath = "META-INF/container.xml"
	PayloadPath  = "score.mscx"
)

var rootfileExpr = xml.MustCompile("rootfiles/rootfile")

// ErrRootfileCount is returned when a manifest does not name exactly one payload.
var ErrRootfileCount = errors.New("manifest must list exactly one rootfile")

// ParseManifest returns the payload path named by a container manifest.
func ParseManifest(data []byte) (string, error) {
	doc, err := xml.Parse(data)
	if err != nil {
		return "", err
	}

	rootfiles := xml.QueryAll(xml.RootElement(doc), rootfileExpr)
	if len(rootfiles) != 1 {
		return "", fmt.Errorf("%w: found %d", ErrRootfileCount, len(rootfiles))
	}

	fullPath := strings.TrimSpace(rootfiles[0].SelectAttr("full-path"))
	if fullPath == "" {
		return "", errors.New("rootfile has no full-path attribute")
	}
	return fullPath, nil
}

// BuildManifest returns a fresh manifest naming payload.
func BuildManifest(payload string) []byte {
	rootfile := xml.NewElement("rootfile")
	xmlquery.AddAttr(rootfile, "full-path", payload)
	rootfiles := xml.NewElement("rootfiles")
	xml.AppendChild(rootfiles, rootfile)
	root := xml.NewElement("container")
	xml.AppendChild(root, rootfiles)

	return xml.Serialize(xml.NewDocument(root), xml.WriteOptions{Indent: "  "})
}
