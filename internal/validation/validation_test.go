package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantError error
	}{
		{"valid", "Song A.mscz", nil},
		{"unicode", "Étude.mscz", nil},
		{"empty", "", ErrInvalidFilename},
		{"dot", ".", ErrInvalidFilename},
		{"dotdot", "..", ErrInvalidFilename},
		{"slash", "a/b.mscz", ErrInvalidFilename},
		{"backslash", `a\b.mscz`, ErrInvalidFilename},
		{"control", "a\tb.mscz", ErrInvalidFilename},
		{"too long", strings.Repeat("a", 256), ErrFilenameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("ValidateFilename() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidateFilename() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

func TestTruncateFilename(t *testing.T) {
	suffix := "-01234567.mscz"

	if got := TruncateFilename("short", suffix); got != "short" {
		t.Errorf("TruncateFilename(short) = %q", got)
	}

	got := TruncateFilename(strings.Repeat("a", 400), suffix)
	if len(got)+len(suffix) != MaxFilenameLength {
		t.Errorf("truncated length = %d, want %d", len(got)+len(suffix), MaxFilenameLength)
	}

	// Two-byte runes must not be split
	got = TruncateFilename(strings.Repeat("é", 300), suffix)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if len(got)+len(suffix) > MaxFilenameLength {
		t.Errorf("truncated length = %d, over limit", len(got)+len(suffix))
	}
	if err := ValidateFilename(got + suffix); err != nil {
		t.Errorf("truncated name should validate: %v", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{"valid relative path", "song.mscx", nil},
		{"valid absolute path", "/tmp/song.mscz", nil},
		{"valid nested path", "dir/subdir/song.mscz", nil},
		{"empty path", "", ErrEmptyPath},
		{"path with null byte", "song\x00.mscx", ErrInvalidCharacter},
		{"path with control character", "dir/song\n.mscx", ErrInvalidCharacter},
		{"very long path", strings.Repeat("a/", 2048) + "song.mscx", ErrPathTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("ValidatePath() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidatePath() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

func TestValidatePaths(t *testing.T) {
	if err := ValidatePaths([]string{"a.mscx", "b.mscz"}); err != nil {
		t.Errorf("ValidatePaths() unexpected error: %v", err)
	}
	err := ValidatePaths([]string{"a.mscx", ""})
	if !errors.Is(err, ErrEmptyPath) {
		t.Errorf("ValidatePaths() error = %v, want ErrEmptyPath", err)
	}
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    FileType
	}{
		{"zip", "PK\x03\x04rest", FileTypeZip},
		{"xml", `<?xml version="1.0"?><museScore/>`, FileTypeXML},
		{"xml with bom and whitespace", "\xef\xbb\xbf\n  <museScore/>", FileTypeXML},
		{"plain text", "just words", FileTypeUnknown},
		{"binary", "\x00\x01\x02", FileTypeUnknown},
		{"empty", "", FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFileType(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("DetectFileType() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFileType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateScoreFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    string
		want    FileType
		wantErr bool
	}{
		{"xml score", write("a.mscx", "<museScore/>"), FileTypeXML, false},
		{"packaged score", write("b.mscz", "PK\x03\x04"), FileTypeZip, false},
		{"xml named as package", write("c.mscz", "<museScore/>"), FileTypeXML, true},
		{"zip named as xml", write("d.mscx", "PK\x03\x04"), FileTypeZip, true},
		{"other extension", write("e.txt", "hello"), FileTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateScoreFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateScoreFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("ValidateScoreFile() error = %v, want ErrTypeMismatch", err)
			}
			if got != tt.want {
				t.Errorf("ValidateScoreFile() = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := ValidateScoreFile(filepath.Join(dir, "missing.mscx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ValidateScoreFile(missing) error = %v, want not exist", err)
	}
}
