package packing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"tankobon/internal/archive"
	"tankobon/internal/chapter"
	"tankobon/internal/epubnav"
	"tankobon/internal/fileutil"
	"tankobon/internal/logging"
	"tankobon/internal/services"
	"tankobon/internal/services/kcc"
	"tankobon/internal/textutil"
)

// stagedChapter is one extracted chapter on disk. home is its extraction
// location outside any candidate; dir tracks where the directory currently
// lives as it moves in and out of candidates.
type stagedChapter struct {
	artifact chapter.Artifact
	home     string
	dir      string
}

// candidate is the single open volume under construction. merged holds the
// last accepted conversion of its members; a candidate that only ever held
// one chapter has no merged artifact yet.
type candidate struct {
	dir     string
	members []*stagedChapter
	merged  kcc.Artifact
}

func (c *candidate) empty() bool { return len(c.members) == 0 }

// add moves a staged chapter directory into the candidate.
func (c *candidate) add(ch *stagedChapter) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(c.dir, filepath.Base(ch.dir))
	if err := os.Rename(ch.dir, dest); err != nil {
		return err
	}
	ch.dir = dest
	c.members = append(c.members, ch)
	return nil
}

// removeLast moves the most recently added chapter back out of the
// candidate, undoing a rejected speculative merge.
func (c *candidate) removeLast() error {
	last := c.members[len(c.members)-1]
	if err := os.Rename(last.dir, last.home); err != nil {
		return err
	}
	last.dir = last.home
	c.members = c.members[:len(c.members)-1]
	return nil
}

// closedVolume pairs a finished conversion artifact with the chapters that
// produced it, kept for label fallback when the artifact carries no usable
// navigation metadata.
type closedVolume struct {
	members  []chapter.Artifact
	artifact kcc.Artifact
}

// probeOutcome reports one speculative merge. A split probe means the
// converter could not fit the merged input into one artifact even under its
// own target size; extra carries the overflow artifacts.
type probeOutcome struct {
	within   bool
	artifact kcc.Artifact
	extra    []kcc.Artifact
}

type run struct {
	engine    *Engine
	req       Request
	dir       string
	ceiling   int64
	outputDir string
	logger    *slog.Logger

	probeSeq int
	candSeq  int
	closed   []closedVolume
}

func (r *run) execute(ctx context.Context) (Result, error) {
	chapters, skipped := r.identify()
	if len(chapters) == 0 {
		r.logger.Warn("no chapters with parseable numbers, nothing to pack",
			logging.Int("skipped", len(skipped)),
		)
		return Result{Skipped: skipped}, nil
	}
	chapter.SortArtifacts(chapters)

	staged, err := r.stage(ctx, chapters)
	if err != nil {
		return Result{}, err
	}

	if err := r.pack(ctx, staged); err != nil {
		return Result{}, err
	}

	volumes, err := r.finalize()
	if err != nil {
		return Result{}, err
	}
	return Result{Volumes: volumes, Skipped: skipped}, nil
}

// identify parses a chapter number out of every input file name. Files that
// yield no number are skipped with a warning rather than failing the run.
func (r *run) identify() ([]chapter.Artifact, []string) {
	extractor := chapter.Extractor{IntegersOnly: r.engine.cfg.Packing.IntegerChapters}
	chapters := make([]chapter.Artifact, 0, len(r.req.ChapterPaths))
	var skipped []string
	for _, path := range r.req.ChapterPaths {
		name := filepath.Base(path)
		number, err := extractor.Extract(name)
		if err != nil {
			r.logger.Warn("skipping chapter without a parseable number",
				logging.String("file", name),
				logging.Error(err),
			)
			skipped = append(skipped, name)
			continue
		}
		chapters = append(chapters, chapter.Artifact{Path: path, Number: number})
	}
	return chapters, skipped
}

// stage extracts every chapter archive into the run's staging area. Each
// chapter gets a directory whose name sorts in reading order so the
// converter pages through chapters correctly.
func (r *run) stage(ctx context.Context, chapters []chapter.Artifact) ([]*stagedChapter, error) {
	chaptersDir := filepath.Join(r.dir, "chapters")
	staged := make([]*stagedChapter, 0, len(chapters))
	used := make(map[string]int, len(chapters))
	for _, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Equal chapter numbers from different releases stage side by
		// side; a letter suffix keeps the directory unique without
		// changing the number its name parses back to.
		name := chapterDirName(ch.Number)
		if n := used[name]; n > 0 {
			name += " " + dupSuffix(n)
		}
		used[chapterDirName(ch.Number)]++
		dest := filepath.Join(chaptersDir, name)
		if err := archive.Extract(ch.Path, dest); err != nil {
			return nil, services.Wrap(services.ErrValidation, "packing", "stage",
				fmt.Sprintf("extract %s", filepath.Base(ch.Path)), err)
		}
		staged = append(staged, &stagedChapter{artifact: ch, home: dest, dir: dest})
	}
	return staged, nil
}

// pack runs the merge-probe loop over the staged chapters in order.
func (r *run) pack(ctx context.Context, staged []*stagedChapter) error {
	cand := r.newCandidate()
	for _, ch := range staged {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cand.empty() {
			if err := cand.add(ch); err != nil {
				return services.Wrap(services.ErrTransient, "packing", "pack", "open candidate", err)
			}
			if len(r.closed) == 0 && r.req.Curator != nil {
				if err := r.req.Curator.Apply(cand.dir, ch.dir); err != nil {
					return services.Wrap(services.ErrValidation, "packing", "pack", "apply front matter", err)
				}
			}
			continue
		}

		outcome, err := r.probe(ctx, cand, ch)
		if err != nil {
			return err
		}
		if !outcome.within {
			r.logger.Info("chapter would exceed ceiling, closing volume",
				logging.String("chapter", ch.artifact.Number.String()),
			)
			if err := r.closeCandidate(ctx, cand); err != nil {
				return err
			}
			cand = r.newCandidate()
			if err := cand.add(ch); err != nil {
				return services.Wrap(services.ErrTransient, "packing", "pack", "open candidate", err)
			}
			continue
		}

		if cand.merged.Path != "" {
			r.discard(cand.merged.Path)
		}
		cand.merged = outcome.artifact
		if len(outcome.extra) > 0 {
			// The converter split its own output: the candidate is as full
			// as it gets. Close every piece and start over empty.
			r.logger.Info("converter split output, closing volume",
				logging.Int("pieces", len(outcome.extra)+1),
			)
			members := memberArtifacts(cand.members)
			r.closed = append(r.closed, closedVolume{members: members, artifact: outcome.artifact})
			for _, extra := range outcome.extra {
				r.closed = append(r.closed, closedVolume{members: members, artifact: extra})
			}
			cand = r.newCandidate()
		}
	}
	return r.closeCandidate(ctx, cand)
}

// probe speculatively adds ch to the candidate and converts the whole
// candidate. Within the ceiling, the chapter stays and the fresh artifact is
// returned; over the ceiling, the artifact is deleted and the chapter is
// moved back out.
func (r *run) probe(ctx context.Context, cand *candidate, ch *stagedChapter) (probeOutcome, error) {
	if err := cand.add(ch); err != nil {
		return probeOutcome{}, services.Wrap(services.ErrTransient, "packing", "probe", "stage chapter", err)
	}
	artifacts, err := r.convert(ctx, cand.dir)
	if err != nil {
		return probeOutcome{}, err
	}
	first := artifacts[0]
	r.logger.Debug("speculative merge measured",
		logging.String("chapter", ch.artifact.Number.String()),
		logging.String("size", humanize.Bytes(uint64(first.Size))),
	)
	if first.Size <= r.ceiling {
		return probeOutcome{within: true, artifact: first, extra: artifacts[1:]}, nil
	}
	for _, a := range artifacts {
		r.discard(a.Path)
	}
	if err := cand.removeLast(); err != nil {
		return probeOutcome{}, services.Wrap(services.ErrTransient, "packing", "probe", "unstage chapter", err)
	}
	return probeOutcome{}, nil
}

// closeCandidate finishes the open candidate. A candidate that never had a
// successful merge (a lone chapter) is converted on its own; a lone chapter
// bigger than the ceiling still becomes a volume, with a warning, because
// dropping content is worse than an oversized artifact.
func (r *run) closeCandidate(ctx context.Context, cand *candidate) error {
	if cand.empty() {
		return nil
	}
	members := memberArtifacts(cand.members)
	if cand.merged.Path != "" {
		r.closed = append(r.closed, closedVolume{members: members, artifact: cand.merged})
		return nil
	}
	artifacts, err := r.convert(ctx, cand.dir)
	if err != nil {
		return err
	}
	if len(artifacts) == 1 && artifacts[0].Size > r.ceiling {
		r.logger.Warn("single chapter exceeds ceiling on its own",
			logging.String("chapter", members[0].Number.String()),
			logging.String("size", humanize.Bytes(uint64(artifacts[0].Size))),
		)
	}
	for _, a := range artifacts {
		r.closed = append(r.closed, closedVolume{members: members, artifact: a})
	}
	return nil
}

// convert invokes the converter against dir and returns at least one
// artifact. Failures are fatal to the run.
func (r *run) convert(ctx context.Context, dir string) ([]kcc.Artifact, error) {
	out := filepath.Join(r.dir, fmt.Sprintf("probe-%03d.epub", r.probeSeq))
	r.probeSeq++
	artifacts, err := r.engine.client.Convert(ctx, kcc.Request{
		InputDir:     dir,
		OutputPath:   out,
		TargetSizeMB: r.targetSizeMB(),
	}, r.req.Progress)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "packing", "convert", "conversion failed", err)
	}
	if len(artifacts) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "packing", "convert", "converter produced no artifact", nil)
	}
	return artifacts, nil
}

// finalize labels every closed volume and moves it into the output
// directory under its final name.
func (r *run) finalize() ([]Volume, error) {
	volumes := make([]Volume, 0, len(r.closed))
	seen := make(map[string]int, len(r.closed))
	for _, cv := range r.closed {
		label := r.label(cv)
		name := textutil.VolumeFileName(r.req.Title, label, ".epub")
		// Converter-side splits can leave two artifacts with the same
		// fallback label; number the extras instead of clobbering.
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d).epub", strings.TrimSuffix(name, ".epub"), n)
		}
		finalPath := filepath.Join(r.outputDir, name)
		if err := fileutil.MoveFile(cv.artifact.Path, finalPath); err != nil {
			return nil, services.Wrap(services.ErrTransient, "packing", "finalize", name, err)
		}
		r.logger.Info("volume finished",
			logging.String(logging.FieldVolume, label),
			logging.String("path", finalPath),
			logging.String("size", humanize.Bytes(uint64(cv.artifact.Size))),
		)
		volumes = append(volumes, Volume{Path: finalPath, Label: label, Size: cv.artifact.Size})
	}
	return volumes, nil
}

// label derives the chapter-range label for a closed volume, preferring what
// the artifact itself says it contains over what went in.
func (r *run) label(cv closedVolume) string {
	if rng, err := epubnav.ChapterRange(cv.artifact.Path); err == nil {
		return formatLabel(rng.Min, rng.Max)
	} else {
		r.logger.Debug("artifact range unavailable, using input numbers", logging.Error(err))
	}
	min, max := cv.members[0].Number, cv.members[0].Number
	for _, m := range cv.members[1:] {
		if m.Number < min {
			min = m.Number
		}
		if m.Number > max {
			max = m.Number
		}
	}
	return formatLabel(min, max)
}

func (r *run) newCandidate() *candidate {
	dir := filepath.Join(r.dir, fmt.Sprintf("vol-%03d", r.candSeq))
	r.candSeq++
	return &candidate{dir: dir}
}

// discard deletes a superseded conversion artifact immediately so at most
// one merged artifact per candidate exists at a time.
func (r *run) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove superseded artifact",
			logging.String("path", path),
			logging.Error(err),
		)
	}
}

func (r *run) targetSizeMB() int {
	mb := int(r.ceiling / (1024 * 1024))
	if mb < 1 {
		mb = 1
	}
	return mb
}

func memberArtifacts(members []*stagedChapter) []chapter.Artifact {
	out := make([]chapter.Artifact, len(members))
	for i, m := range members {
		out[i] = m.artifact
	}
	return out
}

// dupSuffix renders i as lowercase letters ("b", "c", ... "ba") so staged
// directories for duplicate chapter numbers stay unique while containing no
// digits that would change the parsed chapter number.
func dupSuffix(i int) string {
	var s []byte
	for i > 0 {
		s = append([]byte{byte('a' + i%26)}, s...)
		i /= 26
	}
	return string(s)
}

// chapterDirName names an extracted chapter directory so that simple
// lexical ordering matches reading order, including fractional chapters.
// "Chapter 0002" sorts before "Chapter 0002.5" sorts before "Chapter 0010".
func chapterDirName(n chapter.Number) string {
	s := n.String()
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	for len(intPart) < 4 {
		intPart = "0" + intPart
	}
	return "Chapter " + intPart + frac
}
