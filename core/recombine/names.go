package recombine

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/MuseScoreTools/core/container"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
	"github.com/FocuswithJustin/MuseScoreTools/internal/validation"
)

// DefaultCollisionRetries regenerates a colliding name once and accepts the
// result even if it collides too.
const DefaultCollisionRetries = 1

var nameReplacer = strings.NewReplacer(
	"\n", " ",
	"\t", " ",
	"\r", "",
	"<", "",
	">", "",
	":", "",
	`"`, "",
	"/", "",
	`\`, "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeName strips characters that are unsafe in file names. Newlines
// and tabs become spaces; the other reserved characters are removed.
func SanitizeName(title string) string {
	return nameReplacer.Replace(title)
}

const suffixLen = 8

// randomSuffix returns suffixLen lowercase hex characters from a fresh random UUID.
func randomSuffix() string {
	id := uuid.New()
	return hex.EncodeToString(id[:suffixLen/2])
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// PartPath returns the packaged output path for a part named name in dir.
// When <name>.mscz already exists a random 8-hex suffix is appended, drawing
// a new suffix up to retries times. If every candidate collides the last one
// is returned and will be overwritten.
func PartPath(dir, name string, retries int) string {
	// Leave room for a suffix so both candidates share the same base.
	base := validation.TruncateFilename(SanitizeName(name), "-"+strings.Repeat("0", suffixLen)+container.ExtPackage)
	candidate := filepath.Join(dir, base+container.ExtPackage)
	if !exists(candidate) {
		return candidate
	}
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		candidate = filepath.Join(dir, base+"-"+randomSuffix()+container.ExtPackage)
		if !exists(candidate) {
			break
		}
	}
	return candidate
}

// WriteOptions controls how parts are persisted.
type WriteOptions struct {
	Container        container.Options
	CollisionRetries int
}

// WriteParts saves each part as a packaged score in dir and returns the
// written paths in part order. Writing stops at the first failure; paths
// written before it are still returned.
func WriteParts(parts []Part, dir string, opts WriteOptions) ([]string, error) {
	retries := opts.CollisionRetries
	if retries == 0 {
		retries = DefaultCollisionRetries
	}

	written := make([]string, 0, len(parts))
	for _, part := range parts {
		path := PartPath(dir, part.Name, retries)
		if err := container.SaveWithOptions(part.Doc, path, opts.Container); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// SplitFile resolves src, splits it and writes the parts to dir.
func SplitFile(src Source, dir string, opts WriteOptions) ([]string, score.Diagnostics, error) {
	doc, err := Resolve(src)
	if err != nil {
		return nil, nil, err
	}
	parts, diags, err := Split(doc)
	if err != nil {
		return nil, diags, err
	}
	written, err := WriteParts(parts, dir, opts)
	return written, diags, err
}
