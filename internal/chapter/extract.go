package chapter

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// patternSet holds the compiled expressions one extraction mode works with.
type patternSet struct {
	number     *regexp.Regexp
	trailing   *regexp.Regexp
	standalone *regexp.Regexp
}

var (
	fractionalPatterns = patternSet{
		number:     regexp.MustCompile(`\d+(?:\.\d+)?`),
		trailing:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:$|v\d+)`),
		standalone: regexp.MustCompile(`(?:^|\s)(\d+(?:\.\d+)?)(?:\s|$)`),
	}
	integerPatterns = patternSet{
		number:     regexp.MustCompile(`\d+`),
		trailing:   regexp.MustCompile(`(\d+)\s*(?:$|v\d+)`),
		standalone: regexp.MustCompile(`(?:^|\s)(\d+)(?:\s|$)`),
	}

	numericExtension = regexp.MustCompile(`^\.\d+$`)
)

// Extractor parses chapter numbers from file names. The zero value accepts
// fractional chapter numbers; IntegersOnly restricts parsing to whole
// numbers and is deliberately opt-in because it loses side chapters.
type Extractor struct {
	IntegersOnly bool
}

// strategy returns a numeric token from the name, most specific first.
// Declared as an ordered list because precedence is policy: names are
// adversarial across sources and a later, looser pattern must never win
// over an earlier one.
type strategy func(patternSet, string) (string, bool)

var strategies = []strategy{
	lastNumber,
	trailingNumber,
	standaloneNumber,
	firstNumber,
}

// Extract returns the chapter number encoded in filename, or a ParseError
// when no strategy finds a usable numeric token.
func (e Extractor) Extract(filename string) (Number, error) {
	name := normalizeName(filename)
	patterns := fractionalPatterns
	if e.IntegersOnly {
		patterns = integerPatterns
	}

	for _, match := range strategies {
		token, ok := match(patterns, name)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		return Number(value), nil
	}
	return 0, &ParseError{Filename: filename}
}

// normalizeName lowercases the base name and strips the extension unless it
// looks like a fractional chapter suffix ("Chapter 12.5" must keep ".5").
func normalizeName(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" && !numericExtension.MatchString(ext) {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ToLower(base)
}

// lastNumber picks the final number in the name: "Series Vol.3 Ch.12"
// resolves to 12 because the chapter index trails the volume marker.
func lastNumber(patterns patternSet, name string) (string, bool) {
	matches := patterns.number.FindAllString(name, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}

// trailingNumber picks a number standing at the end of the name or right
// before a v<N> volume marker.
func trailingNumber(patterns patternSet, name string) (string, bool) {
	match := patterns.trailing.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// standaloneNumber picks a whitespace-delimited number anywhere in the name.
func standaloneNumber(patterns patternSet, name string) (string, bool) {
	match := patterns.standalone.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// firstNumber is the last resort: any number, wherever it occurs.
func firstNumber(patterns patternSet, name string) (string, bool) {
	match := patterns.number.FindString(name)
	if match == "" {
		return "", false
	}
	return match, true
}
