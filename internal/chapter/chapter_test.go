package chapter_test

import (
	"errors"
	"testing"

	"tankobon/internal/chapter"
)

func TestExtractParsesCommonNamingSchemes(t *testing.T) {
	cases := []struct {
		name string
		want chapter.Number
	}{
		{"One Piece - Chapter 1045.cbz", 1045},
		{"Series Vol.3 Ch.12.cbz", 12},
		{"Anima Regia_Vol. 4, Ch. 23_ Extra.cbz", 23},
		{"berserk_374.cbz", 374},
		{"ch 001.cbz", 1},
		{"Chapter 12.5.cbz", 12.5},
		{"Side Story 1.5.cbz", 1.5},
		{"12.cbz", 12},
		{"[Group] Title 045 v2.cbz", 2},
		{"Chapter 12.5", 12.5},
	}
	for _, tc := range cases {
		got, err := chapter.Extractor{}.Extract(tc.name)
		if err != nil {
			t.Fatalf("Extract(%q) returned error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("Extract(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExtractTrailingIntegerWins(t *testing.T) {
	// Names of the form *<words>*<int> with no later digits must resolve to
	// exactly that trailing integer.
	cases := map[string]chapter.Number{
		"my manga 7.cbz":        7,
		"title chapter 103.cbz": 103,
		"a b c 42":              42,
	}
	for name, want := range cases {
		got, err := chapter.Extractor{}.Extract(name)
		if err != nil {
			t.Fatalf("Extract(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Fatalf("Extract(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestExtractFailsWithoutDigits(t *testing.T) {
	for _, name := range []string{"cover.cbz", "no numbers here", ""} {
		_, err := chapter.Extractor{}.Extract(name)
		if err == nil {
			t.Fatalf("Extract(%q) succeeded, want ParseError", name)
		}
		var parseErr *chapter.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Extract(%q) error = %v, want *ParseError", name, err)
		}
	}
}

func TestExtractIntegersOnlyDropsFraction(t *testing.T) {
	got, err := chapter.Extractor{IntegersOnly: true}.Extract("chapter 12 v3.cbz")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got != 3 {
		t.Fatalf("Extract = %v, want 3 (last integer)", got)
	}
}

func TestNumberString(t *testing.T) {
	cases := map[chapter.Number]string{
		1:     "1",
		12:    "12",
		12.5:  "12.5",
		100.0: "100",
		0.5:   "0.5",
	}
	for n, want := range cases {
		if got := n.String(); got != want {
			t.Fatalf("Number(%v).String() = %q, want %q", float64(n), got, want)
		}
	}
}

func TestSortArtifactsIsStableForEqualNumbers(t *testing.T) {
	chapters := []chapter.Artifact{
		{Path: "b.cbz", Number: 2},
		{Path: "dup-first.cbz", Number: 1},
		{Path: "dup-second.cbz", Number: 1},
		{Path: "a.cbz", Number: 0.5},
	}
	chapter.SortArtifacts(chapters)

	want := []string{"a.cbz", "dup-first.cbz", "dup-second.cbz", "b.cbz"}
	for i, path := range want {
		if chapters[i].Path != path {
			t.Fatalf("position %d = %q, want %q (order %v)", i, chapters[i].Path, path, chapters)
		}
	}
}
