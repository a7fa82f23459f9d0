// Package validation checks user-supplied paths and score file contents
// before the engines touch them.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on user input.
const (
	// MaxFilenameLength is the maximum allowed filename length in bytes.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrTypeMismatch     = errors.New("file content does not match extension")
)

// ValidateFilename checks that a generated file name is usable on its own.
// It rejects path separators, control characters and reserved names.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}

	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}

	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}

	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}

	return nil
}

// TruncateFilename shortens base so that base+suffix fits in
// MaxFilenameLength bytes, cutting on a rune boundary.
func TruncateFilename(base, suffix string) string {
	limit := MaxFilenameLength - len(suffix)
	if limit < 0 {
		limit = 0
	}
	if len(base) <= limit {
		return base
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(base[cut]) {
		cut--
	}
	return base[:cut]
}

// ValidatePath performs path validation without requiring a base directory.
// It checks length limits and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	// Check for null bytes
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ValidatePaths runs ValidatePath over every entry and reports the first
// failure with its path.
func ValidatePaths(paths []string) error {
	for _, p := range paths {
		if err := ValidatePath(p); err != nil {
			return fmt.Errorf("%q: %w", p, err)
		}
	}
	return nil
}

// FileType is the content type detected from a score file's leading bytes.
type FileType string

const (
	FileTypeZip     FileType = "zip"
	FileTypeXML     FileType = "xml"
	FileTypeUnknown FileType = "unknown"
)

var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// DetectFileType classifies the header of a score file.
func DetectFileType(reader io.Reader) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	switch {
	case bytes.HasPrefix(buf, zipMagic):
		return FileTypeZip, nil
	case isLikelyText(buf) && bytes.HasPrefix(bytes.TrimLeft(stripBOM(buf), " \t\r\n"), []byte("<")):
		return FileTypeXML, nil
	}
	return FileTypeUnknown, nil
}

// expectedType maps a score extension to its content type.
func expectedType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mscz":
		return FileTypeZip
	case ".mscx":
		return FileTypeXML
	}
	return FileTypeUnknown
}

// ValidateScoreFile checks that the content at path matches what its
// extension promises: a zip archive for .mscz, XML text for .mscx.
// Other extensions are left for the codec to reject.
func ValidateScoreFile(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileTypeUnknown, err
	}
	defer f.Close()

	detected, err := DetectFileType(f)
	if err != nil {
		return FileTypeUnknown, err
	}
	want := expectedType(path)
	if want != FileTypeUnknown && detected != want {
		return detected, fmt.Errorf("%w: %s looks like %s, want %s", ErrTypeMismatch, filepath.Base(path), detected, want)
	}
	return detected, nil
}

func stripBOM(buf []byte) []byte {
	return bytes.TrimPrefix(buf, []byte{0xef, 0xbb, 0xbf})
}

// isLikelyText checks if the buffer contains likely text content.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	// Null bytes are a strong indicator of binary content
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
		// UTF-8 continuation bytes (0x80-0xBF) and start bytes (0xC0-0xFD) are neutral
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
