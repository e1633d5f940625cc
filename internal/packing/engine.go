package packing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tankobon/internal/chapter"
	"tankobon/internal/config"
	"tankobon/internal/frontmatter"
	"tankobon/internal/logging"
	"tankobon/internal/services"
	"tankobon/internal/services/kcc"
)

// Volume is one finished artifact with its chapter-range label.
type Volume struct {
	Path  string
	Label string
	Size  int64
}

// Request describes one packing run.
type Request struct {
	Title        string
	ChapterPaths []string
	// CeilingBytes overrides the configured packing ceiling when positive.
	CeilingBytes int64
	// OutputDir overrides the configured output directory when set.
	OutputDir string
	// Curator applies optional front-matter curation to the first chapter.
	Curator *frontmatter.Curator
	// CleanupInputs deletes the source archives after a successful run.
	// A failed run always keeps them so the caller can retry.
	CleanupInputs bool
	// Progress receives converter output lines while a conversion runs.
	Progress func(kcc.ProgressUpdate)
}

// Result is the outcome of a packing run. Skipped lists input file names
// whose chapter number could not be parsed; a run that skips everything
// returns an empty volume list and no error so callers can tell "nothing to
// merge" apart from "merge broke".
type Result struct {
	Volumes []Volume
	Skipped []string
}

// Engine packs chapters into volumes by driving a conversion client.
type Engine struct {
	cfg    *config.Config
	client kcc.Client
	logger *slog.Logger
}

// New constructs an Engine.
func New(cfg *config.Config, client kcc.Client, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "packing"),
	}
}

// Run executes one packing run to completion. Conversion failures abort the
// run; scratch space is removed on every exit path before Run returns.
func (e *Engine) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "packing", "run", "work title required", nil)
	}
	if len(req.ChapterPaths) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "packing", "run", "no chapters supplied", nil)
	}

	ceiling := req.CeilingBytes
	if ceiling <= 0 {
		ceiling = e.cfg.CeilingBytes()
	}
	outputDir := req.OutputDir
	if strings.TrimSpace(outputDir) == "" {
		outputDir = e.cfg.Paths.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "packing", "run", "create output directory", err)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)

	dir := filepath.Join(e.cfg.Paths.StagingDir, "run-"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "packing", "run", "create staging directory", err)
	}

	r := &run{
		engine:    e,
		req:       req,
		dir:       dir,
		ceiling:   ceiling,
		outputDir: outputDir,
		logger: logging.WithContext(ctx, e.logger).With(
			logging.String(logging.FieldTitle, req.Title),
		),
	}
	defer r.cleanup()

	result, err := r.execute(ctx)
	if err == nil && req.CleanupInputs {
		r.removeInputs()
	}
	return result, err
}

// cleanup removes the run's staging directory and curator scratch.
// Failures are logged and never override the run outcome.
func (r *run) cleanup() {
	if err := os.RemoveAll(r.dir); err != nil {
		r.logger.Warn("failed to remove staging directory",
			logging.String("path", r.dir),
			logging.Error(err),
		)
	}
	if r.req.Curator != nil {
		r.req.Curator.Cleanup()
	}
}

// removeInputs deletes the source archives, best effort. Only called once
// the run has succeeded; a failed run must leave the inputs for a retry.
func (r *run) removeInputs() {
	for _, path := range r.req.ChapterPaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("failed to remove source archive",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
}

// formatLabel renders a chapter-range label: [n] for a single chapter,
// [min-max] for a span.
func formatLabel(min, max chapter.Number) string {
	if max > min {
		return fmt.Sprintf("[%s-%s]", min, max)
	}
	return fmt.Sprintf("[%s]", min)
}
