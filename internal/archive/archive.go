// Package archive reads and unpacks CBZ chapter archives.
//
// A CBZ is a plain ZIP of page images. Extraction validates entry paths and
// caps per-entry decompression so a hostile archive cannot escape its
// destination directory or exhaust disk.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxEntrySize caps the decompressed size of a single archive entry.
// Manga pages are a few MB at most; 256 MB guards against zip bombs.
const maxEntrySize int64 = 256 * 1024 * 1024

// ErrEntryNotFound reports a requested entry missing from the archive.
var ErrEntryNotFound = errors.New("archive: entry not found")

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// Extract unpacks every entry of the CBZ at archivePath into destDir,
// creating it if needed. Directory entries and unsafe paths are skipped.
func Extract(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extraction dir: %w", err)
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !isSafePath(entry.Name) {
			continue
		}
		if err := writeEntry(entry, destDir); err != nil {
			return err
		}
	}
	return nil
}

// ListImages returns the image entry names of the archive in archive order.
func ListImages(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	var names []string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || !isSafePath(entry.Name) {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(path.Ext(entry.Name))]; ok {
			names = append(names, entry.Name)
		}
	}
	return names, nil
}

// ExtractEntries writes the named entries into destDir using their base
// names and returns the written paths in the order requested.
func ExtractEntries(archivePath, destDir string, names []string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create extraction dir: %w", err)
	}

	byName := make(map[string]*zip.File, len(reader.File))
	for _, entry := range reader.File {
		byName[entry.Name] = entry
	}

	written := make([]string, 0, len(names))
	for _, name := range names {
		entry, ok := byName[name]
		if !ok {
			return written, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, name, archivePath)
		}
		dest := filepath.Join(destDir, filepath.Base(entry.Name))
		if err := copyEntry(entry, dest); err != nil {
			return written, err
		}
		written = append(written, dest)
	}
	return written, nil
}

func writeEntry(entry *zip.File, destDir string) error {
	dest := filepath.Join(destDir, filepath.FromSlash(path.Clean(entry.Name)))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create entry dir: %w", err)
	}
	return copyEntry(entry, dest)
}

func copyEntry(entry *zip.File, dest string) error {
	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(in, maxEntrySize+1))
	if err != nil {
		return fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	if written > maxEntrySize {
		_ = os.Remove(dest)
		return fmt.Errorf("extract %s: entry exceeds %d bytes", entry.Name, maxEntrySize)
	}
	return out.Close()
}

// isSafePath rejects ZIP-internal paths that would escape the extraction
// root via traversal or absolute segments.
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}
