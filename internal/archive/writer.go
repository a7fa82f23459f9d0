package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// CreateZip creates a deflate-compressed zip archive at dstPath holding every
// regular file below srcDir. Entry names are slash-separated paths relative
// to srcDir and carry each file's modification time; directories get no
// entries of their own. The archive is always written from scratch and is
// removed again if any step fails.
func CreateZip(srcDir, dstPath string) (err error) {
	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(dstPath)
		}
	}()

	zw := zip.NewWriter(outFile)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(relPath))
	})
	if walkErr != nil {
		zw.Close()
		outFile.Close()
		return fmt.Errorf("failed to create archive: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := outFile.Sync(); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, file)
	return err
}
