package kcc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func setHelperCommand(t *testing.T, mode string, outputs ...string) *[]string {
	t.Helper()
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"KCC_HELPER_MODE="+mode,
			"KCC_HELPER_OUTPUTS="+strings.Join(outputs, string(os.PathListSeparator)),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &capturedArgs
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)
	switch os.Getenv("KCC_HELPER_MODE") {
	case "success":
		for _, path := range strings.Split(os.Getenv("KCC_HELPER_OUTPUTS"), string(os.PathListSeparator)) {
			if path == "" {
				continue
			}
			_ = os.WriteFile(path, []byte("epub payload"), 0o644)
		}
		fmt.Println("Comic2Ebook: completed")
	case "fail":
		fmt.Println("Comic2Ebook: error")
		os.Exit(1)
	}
}

func TestNewCLIOptions(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/kcc-c2e"), WithProfile("KV"), WithGamma(1.2))
	if cli.binary != "/opt/kcc-c2e" || cli.profile != "KV" || cli.gamma != 1.2 {
		t.Fatalf("options not applied: %+v", cli)
	}
}

func TestConvertRequiresInputAndOutput(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Convert(context.Background(), Request{OutputPath: "/tmp/x.epub"}, nil); err == nil {
		t.Fatal("expected error for missing input dir")
	}
	if _, err := cli.Convert(context.Background(), Request{InputDir: "/tmp"}, nil); err == nil {
		t.Fatal("expected error for missing output path")
	}
}

func TestConvertBuildsExpectedArguments(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "title.epub")
	captured := setHelperCommand(t, "success", out)

	cli := NewCLI(WithProfile("KPW5"), WithGamma(0.9))
	if _, err := cli.Convert(context.Background(), Request{InputDir: dir, OutputPath: out, TargetSizeMB: 47}, nil); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	args := *captured
	joined := strings.Join(args, " ")
	for _, want := range []string{"-p KPW5", "-g 0.9", "--forcecolor", "-f EPUB", "-b 1", "--ts 47", "-o " + out} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %q", want, joined)
		}
	}
	if args[len(args)-1] != dir {
		t.Fatalf("expected input dir as final arg, got %v", args)
	}
}

func TestConvertOmitsSizeTargetWhenZero(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "title.epub")
	captured := setHelperCommand(t, "success", out)

	cli := NewCLI()
	if _, err := cli.Convert(context.Background(), Request{InputDir: dir, OutputPath: out}, nil); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if strings.Contains(strings.Join(*captured, " "), "--ts") {
		t.Fatalf("expected no --ts flag, got %v", *captured)
	}
}

func TestConvertCollectsSplitArtifacts(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "title.epub")
	base := strings.TrimSuffix(out, ".epub")
	splits := []string{out, base + "_kcc0.epub", base + "_kcc1.epub"}
	setHelperCommand(t, "success", splits...)

	var updates []ProgressUpdate
	cli := NewCLI()
	artifacts, err := cli.Convert(context.Background(), Request{InputDir: dir, OutputPath: out}, func(u ProgressUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %v", artifacts)
	}
	for i, want := range splits {
		if artifacts[i].Path != want {
			t.Fatalf("artifact %d = %q, want %q", i, artifacts[i].Path, want)
		}
		if artifacts[i].Size <= 0 {
			t.Fatalf("artifact %d has no measured size", i)
		}
	}
	if len(updates) == 0 {
		t.Fatal("expected progress updates from converter output")
	}
}

func TestConvertFailureSurfacesError(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "title.epub")
	setHelperCommand(t, "fail")

	cli := NewCLI()
	if _, err := cli.Convert(context.Background(), Request{InputDir: dir, OutputPath: out}, nil); err == nil {
		t.Fatal("expected error when converter exits nonzero")
	}
}

func TestConvertErrorsWhenNoOutputProduced(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "title.epub")
	setHelperCommand(t, "success") // helper writes nothing

	cli := NewCLI()
	if _, err := cli.Convert(context.Background(), Request{InputDir: dir, OutputPath: out}, nil); err == nil {
		t.Fatal("expected error when converter produces no artifacts")
	}
}
