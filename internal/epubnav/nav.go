// Package epubnav recovers the chapter range a finished EPUB volume actually
// contains by reading its navigation document.
//
// The converter emits one TOC entry per merged chapter directory, so the
// nav.xhtml entries are the authoritative record of what ended up in an
// artifact. This matters once front matter is inserted: positional guesses
// shift, the TOC does not.
package epubnav

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"tankobon/internal/chapter"
)

// ErrRangeUnavailable reports an artifact without usable TOC metadata.
// Callers fall back to labeling from the input chapter numbers.
var ErrRangeUnavailable = errors.New("epubnav: no chapter range metadata in artifact")

// maxNavSize caps the navigation document read; nav files are a few KB.
const maxNavSize int64 = 8 * 1024 * 1024

// frontMatterLabel is the TOC entry name the converter gives the cover unit.
const frontMatterLabel = "A"

// Range holds the lowest and highest chapter numbers found in a volume.
type Range struct {
	Min chapter.Number
	Max chapter.Number
}

// ChapterRange parses the artifact's nav.xhtml and returns the chapter
// numbers spanned by its TOC entries.
func ChapterRange(artifactPath string) (Range, error) {
	reader, err := zip.OpenReader(artifactPath)
	if err != nil {
		return Range{}, fmt.Errorf("open artifact %s: %w", artifactPath, err)
	}
	defer reader.Close()

	var nav *zip.File
	for _, entry := range reader.File {
		if strings.HasSuffix(entry.Name, "nav.xhtml") {
			nav = entry
			break
		}
	}
	if nav == nil {
		return Range{}, ErrRangeUnavailable
	}

	in, err := nav.Open()
	if err != nil {
		return Range{}, fmt.Errorf("open nav document: %w", err)
	}
	defer in.Close()

	data, err := io.ReadAll(io.LimitReader(in, maxNavSize))
	if err != nil {
		return Range{}, fmt.Errorf("read nav document: %w", err)
	}

	entries, err := tocEntries(data)
	if err != nil {
		return Range{}, err
	}

	extractor := chapter.Extractor{}
	var numbers []chapter.Number
	for _, entry := range entries {
		if strings.EqualFold(strings.TrimSpace(entry), frontMatterLabel) {
			continue
		}
		number, err := extractor.Extract(entry)
		if err != nil {
			continue
		}
		numbers = append(numbers, number)
	}
	if len(numbers) == 0 {
		return Range{}, ErrRangeUnavailable
	}

	r := Range{Min: numbers[0], Max: numbers[0]}
	for _, n := range numbers[1:] {
		if n < r.Min {
			r.Min = n
		}
		if n > r.Max {
			r.Max = n
		}
	}
	return r, nil
}

// tocEntries returns the link texts of the first nav element's list.
func tocEntries(data []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse nav document: %w", err)
	}

	nav := findElement(doc, "nav")
	if nav == nil {
		return nil, ErrRangeUnavailable
	}

	var entries []string
	collectAnchors(nav, &entries)
	if len(entries) == 0 {
		return nil, ErrRangeUnavailable
	}
	return entries, nil
}

func findElement(node *html.Node, name string) *html.Node {
	if node.Type == html.ElementNode && node.Data == name {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, name); found != nil {
			return found
		}
	}
	return nil
}

func collectAnchors(node *html.Node, entries *[]string) {
	if node.Type == html.ElementNode && node.Data == "a" {
		if text := strings.TrimSpace(nodeText(node)); text != "" {
			*entries = append(*entries, text)
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectAnchors(child, entries)
	}
}

func nodeText(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}
