package kcc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// splitSuffixLimit bounds the scan for converter-side split outputs.
const splitSuffixLimit = 100

// ProgressUpdate carries one line of converter output.
type ProgressUpdate struct {
	Message string
}

// Artifact is one converter output with its measured size.
type Artifact struct {
	Path string
	Size int64
}

// Request describes one conversion call. InputDir holds the ordered chapter
// subdirectories (plus an optional front-matter unit) to merge; OutputPath
// is where the primary EPUB lands. TargetSizeMB lets the converter split
// its own output when the merged input cannot fit; zero disables splitting.
type Request struct {
	InputDir     string
	OutputPath   string
	TargetSizeMB int
}

// Client defines conversion behaviour consumed by the packing engine.
type Client interface {
	Convert(ctx context.Context, req Request, progress func(ProgressUpdate)) ([]Artifact, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithProfile sets the device profile passed to the converter.
func WithProfile(profile string) Option {
	return func(c *CLI) {
		if profile != "" {
			c.profile = profile
		}
	}
}

// WithGamma sets the gamma correction value.
func WithGamma(gamma float64) Option {
	return func(c *CLI) {
		if gamma > 0 {
			c.gamma = gamma
		}
	}
}

// CLI wraps the kcc-c2e command-line converter.
type CLI struct {
	binary  string
	profile string
	gamma   float64
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "kcc-c2e", profile: "KPW5", gamma: 0.9}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert launches kcc-c2e over req.InputDir and returns the produced
// artifacts with their sizes, primary output first.
func (c *CLI) Convert(ctx context.Context, req Request, progress func(ProgressUpdate)) ([]Artifact, error) {
	if strings.TrimSpace(req.InputDir) == "" {
		return nil, errors.New("input directory required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, errors.New("output path required")
	}

	args := []string{
		"-p", c.profile,
		"-m",
		"-u",
		"-g", strconv.FormatFloat(c.gamma, 'f', -1, 64),
		"--forcecolor",
		"-f", "EPUB",
		"-b", "1",
		"-o", req.OutputPath,
	}
	if req.TargetSizeMB > 0 {
		args = append(args, "--ts", strconv.Itoa(req.TargetSizeMB))
	}
	args = append(args, req.InputDir)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if progress != nil {
			progress(ProgressUpdate{Message: scanner.Text()})
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return nil, fmt.Errorf("read converter output: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("kcc convert failed: %w", err)
	}

	return collectArtifacts(req.OutputPath)
}

// collectArtifacts stats the primary output and any converter-side splits.
// kcc names splits <base>_kcc0.epub, <base>_kcc1.epub and so on.
func collectArtifacts(outputPath string) ([]Artifact, error) {
	base := strings.TrimSuffix(outputPath, ".epub")

	paths := make([]string, 0, 2)
	if _, err := os.Stat(outputPath); err == nil {
		paths = append(paths, outputPath)
	}
	for i := 0; i < splitSuffixLimit; i++ {
		split := fmt.Sprintf("%s_kcc%d.epub", base, i)
		if _, err := os.Stat(split); err != nil {
			break
		}
		paths = append(paths, split)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("converter produced no output at %s", outputPath)
	}

	artifacts := make([]Artifact, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat artifact %s: %w", path, err)
		}
		artifacts = append(artifacts, Artifact{Path: path, Size: info.Size()})
	}
	return artifacts, nil
}

var _ Client = (*CLI)(nil)
