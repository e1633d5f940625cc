// Package frontmatter curates cover and opening pages before packing.
//
// Curation touches only the lowest-numbered chapter: it can pull the lead
// images out of its archive so a caller can pick a cover, drop named pages
// from the extracted chapter, and stage the chosen cover as a zero-ordered
// front-matter unit. Chapter numbering and the ordering of every other
// chapter are never affected.
package frontmatter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tankobon/internal/archive"
	"tankobon/internal/fileutil"
	"tankobon/internal/logging"
)

// UnitName is the directory name the cover is staged under. It sorts before
// every "Chapter <n>" directory, which is how the converter is told to place
// front matter first.
const UnitName = "A"

// Curator accumulates front-matter selections for one packing run.
type Curator struct {
	workDir     string
	coverPath   string
	removePages []string
	logger      *slog.Logger
}

// New creates a Curator that extracts lead images into workDir.
func New(workDir string, logger *slog.Logger) *Curator {
	return &Curator{
		workDir: workDir,
		logger:  logging.NewComponentLogger(logger, "frontmatter"),
	}
}

// LeadImages extracts the first n images of the chapter archive in archive
// order and returns their extracted paths, for presenting cover candidates.
func (c *Curator) LeadImages(chapterPath string, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("lead image count must be positive, got %d", n)
	}
	names, err := archive.ListImages(chapterPath)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) > n {
		names = names[:n]
	}
	return archive.ExtractEntries(chapterPath, c.workDir, names)
}

// SetCover records imagePath as the volume cover. When the image came out of
// the first chapter, its page is also scheduled for removal so it does not
// appear twice.
func (c *Curator) SetCover(imagePath string) {
	c.coverPath = imagePath
	c.RemovePages(filepath.Base(imagePath))
}

// Cover returns the selected cover path, empty when none was chosen.
func (c *Curator) Cover() string {
	return c.coverPath
}

// RemovePages schedules the named pages for removal from the first chapter.
func (c *Curator) RemovePages(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.removePages = append(c.removePages, name)
	}
}

// Apply performs the curation against an extracted first chapter: named
// pages are deleted from firstChapterDir, and the cover is copied into the
// front-matter unit inside candidateDir. Missing pages are logged and
// skipped; a missing cover file is an error because the caller chose it.
func (c *Curator) Apply(candidateDir, firstChapterDir string) error {
	for _, page := range c.removePages {
		pagePath := filepath.Join(firstChapterDir, page)
		if err := os.Remove(pagePath); err != nil {
			if os.IsNotExist(err) {
				c.logger.Debug("page to remove not present", logging.String("page", page))
				continue
			}
			return fmt.Errorf("remove page %s: %w", page, err)
		}
		c.logger.Info("removed page from first chapter", logging.String("page", page))
	}

	if c.coverPath == "" {
		return nil
	}
	unitDir := filepath.Join(candidateDir, UnitName)
	if err := os.MkdirAll(unitDir, 0o755); err != nil {
		return fmt.Errorf("create front-matter unit: %w", err)
	}
	dest := filepath.Join(unitDir, filepath.Base(c.coverPath))
	if err := fileutil.CopyFile(c.coverPath, dest); err != nil {
		return fmt.Errorf("stage cover: %w", err)
	}
	c.logger.Info("staged cover as front matter", logging.String("cover", filepath.Base(c.coverPath)))
	return nil
}

// Cleanup deletes extracted lead images and the cover working copy.
// Best effort; failures are logged, never fatal.
func (c *Curator) Cleanup() {
	if c.workDir == "" {
		return
	}
	if err := os.RemoveAll(c.workDir); err != nil {
		c.logger.Warn("failed to remove front-matter workdir", logging.Error(err))
	}
}
