package textutil_test

import (
	"testing"

	"tankobon/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"One Piece":       "One Piece",
		"Fate/Zero":       "Fate-Zero",
		"Re: Life?":       "Re- Life",
		"  padded  ":      "padded",
		"a\\b:c*d\"e<f>g": "a-b-c-defg",
	}
	for in, want := range cases {
		if got := textutil.SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldDiacritics(t *testing.T) {
	if got := textutil.FoldDiacritics("Tōkyō Ghōul"); got != "Tokyo Ghoul" {
		t.Fatalf("FoldDiacritics = %q", got)
	}
}

func TestVolumeFileName(t *testing.T) {
	got := textutil.VolumeFileName("Berserk", "[1-12]", ".epub")
	if got != "Berserk [1-12].epub" {
		t.Fatalf("VolumeFileName = %q", got)
	}
	if got := textutil.VolumeFileName("", "[3]", "epub"); got != "volume [3].epub" {
		t.Fatalf("VolumeFileName fallback = %q", got)
	}
}
