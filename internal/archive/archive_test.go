package archive_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tankobon/internal/archive"
)

func writeCBZ(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

func TestExtractUnpacksEntries(t *testing.T) {
	dir := t.TempDir()
	cbz := filepath.Join(dir, "ch1.cbz")
	writeCBZ(t, cbz, map[string]string{
		"001.jpg":       "page one",
		"002.jpg":       "page two",
		"sub/003.jpg":   "page three",
		"ComicInfo.xml": "<ComicInfo/>",
	})

	dest := filepath.Join(dir, "out")
	if err := archive.Extract(cbz, dest); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	for _, rel := range []string{"001.jpg", "002.jpg", filepath.Join("sub", "003.jpg"), "ComicInfo.xml"} {
		if _, err := os.Stat(filepath.Join(dest, rel)); err != nil {
			t.Fatalf("expected %s extracted: %v", rel, err)
		}
	}
}

func TestExtractSkipsTraversalEntries(t *testing.T) {
	dir := t.TempDir()
	cbz := filepath.Join(dir, "evil.cbz")
	writeCBZ(t, cbz, map[string]string{
		"../escape.jpg": "nope",
		"ok.jpg":        "fine",
	})

	dest := filepath.Join(dir, "out")
	if err := archive.Extract(cbz, dest); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("traversal entry escaped the destination directory")
	}
	if _, err := os.Stat(filepath.Join(dest, "ok.jpg")); err != nil {
		t.Fatalf("expected safe entry extracted: %v", err)
	}
}

func TestListImagesKeepsArchiveOrderAndFiltersNonImages(t *testing.T) {
	dir := t.TempDir()
	cbz := filepath.Join(dir, "ch1.cbz")

	f, err := os.Create(cbz)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	w := zip.NewWriter(f)
	for _, name := range []string{"002.jpg", "001.png", "notes.txt", "003.JPEG"} {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := entry.Write([]byte(name)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	images, err := archive.ListImages(cbz)
	if err != nil {
		t.Fatalf("ListImages returned error: %v", err)
	}
	want := []string{"002.jpg", "001.png", "003.JPEG"}
	if len(images) != len(want) {
		t.Fatalf("ListImages = %v, want %v", images, want)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Fatalf("ListImages = %v, want %v", images, want)
		}
	}
}

func TestExtractEntriesWritesRequestedPages(t *testing.T) {
	dir := t.TempDir()
	cbz := filepath.Join(dir, "ch1.cbz")
	writeCBZ(t, cbz, map[string]string{
		"001.jpg": "one",
		"002.jpg": "two",
	})

	dest := filepath.Join(dir, "lead")
	written, err := archive.ExtractEntries(cbz, dest, []string{"002.jpg"})
	if err != nil {
		t.Fatalf("ExtractEntries returned error: %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "002.jpg" {
		t.Fatalf("unexpected written paths: %v", written)
	}
	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatalf("read extracted page: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("extracted content = %q, want %q", data, "two")
	}
}

func TestExtractEntriesMissingEntry(t *testing.T) {
	dir := t.TempDir()
	cbz := filepath.Join(dir, "ch1.cbz")
	writeCBZ(t, cbz, map[string]string{"001.jpg": "one"})

	_, err := archive.ExtractEntries(cbz, filepath.Join(dir, "lead"), []string{"nope.jpg"})
	if !errors.Is(err, archive.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}
