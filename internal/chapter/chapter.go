package chapter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Number is a chapter index parsed from a file name. Fractional values
// (1.5, 12.5) identify bonus or side chapters that slot between regular
// releases.
type Number float64

// String renders integral numbers without a decimal point ("12") and
// fractional numbers with their fractional digits ("12.5"), the form used
// in human-facing range labels.
func (n Number) String() string {
	f := float64(n)
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseError reports a file name that carries no usable numeric token.
type ParseError struct {
	Filename string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no chapter number in %q", e.Filename)
}

// Artifact is one chapter input accepted into a packing run. Number is
// fixed at parse time. Temp marks files owned by the run (downloaded into
// its scratch space) that are removed when the run ends.
type Artifact struct {
	Path   string
	Number Number
	Temp   bool
}

// SortArtifacts orders chapters ascending by number. Equal numbers keep
// their input order; source naming carries nothing that could break the
// tie.
func SortArtifacts(chapters []Artifact) {
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Number < chapters[j].Number
	})
}
