// Package textutil sanitizes work titles and labels for filesystem use.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe
// alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of surrounding whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics strips combining marks so accented titles produce portable
// file names ("Tōkyō" -> "Tokyo"). Input is returned unchanged if the
// transform fails.
func FoldDiacritics(s string) string {
	out, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return out
}

// VolumeFileName builds the delivery file name for a finished volume from
// the work title and its chapter-range label.
func VolumeFileName(title, label, ext string) string {
	title = SanitizeFileName(FoldDiacritics(title))
	if title == "" {
		title = "volume"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return title + " " + label + ext
}
