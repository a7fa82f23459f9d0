// Package container reads and writes the two physical forms of a score:
// bare XML (.mscx) and the zip package (.mscz) holding a manifest plus one
// XML payload. Callers get a *score.Document regardless of the form used.
package container

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/FocuswithJustin/MuseScoreTools/core/errors"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
	"github.com/FocuswithJustin/MuseScoreTools/internal/archive"
)

// Recognized file extensions.
const (
	ExtXML     = ".mscx"
	ExtPackage = ".mscz"
)

// Form identifies the physical representation of a score file.
type Form int

const (
	// FormUnknown is any unrecognized extension.
	FormUnknown Form = iota
	// FormXML is a bare .mscx document.
	FormXML
	// FormPackage is a .mscz zip archive.
	FormPackage
)

func (f Form) String() string {
	switch f {
	case FormXML:
		return "mscx"
	case FormPackage:
		return "mscz"
	default:
		return "unknown"
	}
}

// FormOf classifies path by its extension, ignoring case.
func FormOf(path string) Form {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXML:
		return FormXML
	case ExtPackage:
		return FormPackage
	default:
		return FormUnknown
	}
}

// IsSupported reports whether path has a recognized extension.
func IsSupported(path string) bool {
	return FormOf(path) != FormUnknown
}

// Options controls how documents are written.
type Options struct {
	// Indent re-indents the payload when non-empty; otherwise the tree is
	// written verbatim.
	Indent string
}

// Load reads a score from path in either physical form.
func Load(path string) (*score.Document, error) {
	switch FormOf(path) {
	case FormXML:
		return loadXML(path)
	case FormPackage:
		return loadPackage(path)
	default:
		return nil, apperrors.NewUnsupported(path, filepath.Ext(path))
	}
}

func loadXML(path string) (*score.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewIO("read", path, err)
	}
	return parseScore(data, path)
}

func loadPackage(path string) (*score.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}

	r, err := archive.Open(path)
	if err != nil {
		return nil, apperrors.NewParse("archive", path, "not a readable zip archive", err)
	}
	defer r.Close()

	manifestData, err := r.ReadFile(ManifestPath)
	if err != nil {
		return nil, apperrors.NewParse("manifest", path, "missing "+ManifestPath, err)
	}
	payload, err := ParseManifest(manifestData)
	if err != nil {
		return nil, apperrors.NewParse("manifest", path, err.Error(), err)
	}
	if !r.Has(payload) {
		return nil, apperrors.NewParse("manifest", path,
			fmt.Sprintf("rootfile %q not present in archive", payload), archive.ErrEntryNotFound)
	}

	data, err := r.ReadFile(payload)
	if err != nil {
		return nil, apperrors.NewParse("archive", path, "unreadable payload "+payload, err)
	}
	return parseScore(data, path+"!"+payload)
}

func parseScore(data []byte, source string) (*score.Document, error) {
	doc, err := score.Parse(data)
	if err != nil {
		var pe *apperrors.ParseError
		if errors.As(err, &pe) {
			pe.Path = source
		}
		return nil, err
	}
	return doc, nil
}

// Save writes doc to path in the form selected by its extension.
func Save(doc *score.Document, path string) error {
	return SaveWithOptions(doc, path, Options{})
}

// SaveWithOptions writes doc to path. The destination is replaced by rename,
// so a failed write never leaves a half-written file behind.
func SaveWithOptions(doc *score.Document, path string, opts Options) error {
	switch FormOf(path) {
	case FormXML:
		return saveXML(doc, path, opts)
	case FormPackage:
		return savePackage(doc, path, opts)
	default:
		return apperrors.NewUnsupported(path, filepath.Ext(path))
	}
}

func saveXML(doc *score.Document, path string, opts Options) error {
	data := doc.Bytes(xml.WriteOptions{Indent: opts.Indent})
	return writeAtomic(path, func(tmpPath string) error {
		return os.WriteFile(tmpPath, data, defaultMode)
	})
}

func savePackage(doc *score.Document, path string, opts Options) error {
	workDir, err := os.MkdirTemp("", "mscz-*")
	if err != nil {
		return apperrors.NewWrite("create working directory", path, err)
	}
	defer os.RemoveAll(workDir)

	scorePath := filepath.Join(workDir, filepath.FromSlash(PayloadPath))
	if err := os.WriteFile(scorePath, doc.Bytes(xml.WriteOptions{Indent: opts.Indent}), 0644); err != nil {
		return apperrors.NewWrite("write payload", path, err)
	}

	manifestPath := filepath.Join(workDir, filepath.FromSlash(ManifestPath))
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return apperrors.NewWrite("create manifest directory", path, err)
	}
	if err := os.WriteFile(manifestPath, BuildManifest(PayloadPath), 0644); err != nil {
		return apperrors.NewWrite("write manifest", path, err)
	}

	return writeAtomic(path, func(tmpPath string) error {
		return archive.CreateZip(workDir, tmpPath)
	})
}

// defaultMode is given to files that did not exist before the write.
const defaultMode fs.FileMode = 0644

// writeAtomic runs write against a temporary sibling of path and renames it
// into place. A replaced file keeps its permission bits. The temporary file
// is removed on any failure.
func writeAtomic(path string, write func(tmpPath string) error) error {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if err == nil {
			err = fs.ErrInvalid
		}
		return apperrors.NewWrite("open destination directory", path, err)
	}

	mode := defaultMode
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.NewWrite("create temporary file", path, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewWrite("write", path, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewWrite("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewWrite("rename", path, err)
	}
	return nil
}
