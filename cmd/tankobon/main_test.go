package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestIdentifyCommandParsesNames(t *testing.T) {
	cfgPath := writeMinimalConfig(t)

	out, err := runCLI(t, "--config", cfgPath, "identify",
		"One Piece ch. 1052.cbz", "Omake.cbz", "[Scans] Title 12.5.cbz")
	if err != nil {
		t.Fatalf("identify: %v\n%s", err, out)
	}
	requireContains(t, out, "1052")
	requireContains(t, out, "12.5")
	requireContains(t, out, "(unparseable)")
	requireContains(t, out, "1 file(s) would be skipped")
}

func TestIdentifyCommandIntegerFlag(t *testing.T) {
	cfgPath := writeMinimalConfig(t)

	out, err := runCLI(t, "--config", cfgPath, "identify", "--integer", "side story 12.5.cbz")
	if err != nil {
		t.Fatalf("identify: %v\n%s", err, out)
	}
	// The FILE column echoes the input name, so check only the row's
	// chapter cell. Integer mode sees "12" and "5" as separate tokens and
	// keeps the last one; this lossiness is why fractional parsing is the
	// default.
	var row string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "side story 12.5.cbz") {
			row = line
			break
		}
	}
	if row == "" {
		t.Fatalf("no table row for the input file:\n%s", out)
	}
	if strings.Contains(row, " 12.5 ") {
		t.Fatalf("integer mode should not produce a fractional chapter cell: %q", row)
	}
	if !strings.Contains(row, " 5 ") {
		t.Fatalf("expected chapter cell 5, got row: %q", row)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite refuses to clobber.
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestInspectCommandReadsNav(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Work [1-3].epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create epub: %v", err)
	}
	w := zip.NewWriter(f)
	entry, err := w.Create("OEBPS/nav.xhtml")
	if err != nil {
		t.Fatalf("create nav: %v", err)
	}
	nav := `<html xmlns="http://www.w3.org/1999/xhtml"><body><nav><ol>
<li><a href="1.xhtml">Chapter 1</a></li>
<li><a href="3.xhtml">Chapter 3</a></li>
</ol></nav></body></html>`
	if _, err := entry.Write([]byte(nav)); err != nil {
		t.Fatalf("write nav: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	f.Close()

	out, err := runCLI(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	requireContains(t, out, "[1-3]")
}

func TestPackRequiresTitle(t *testing.T) {
	cfgPath := writeMinimalConfig(t)

	if _, err := runCLI(t, "--config", cfgPath, "pack", "ch1.cbz"); err == nil {
		t.Fatal("expected error when --title is missing")
	}
}

// writeMinimalConfig gives commands a config whose directories live under a
// test-owned temp dir, so nothing touches the real home directory.
func writeMinimalConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := `[paths]
staging_dir = "` + filepath.Join(base, "staging") + `"
output_dir = "` + filepath.Join(base, "volumes") + `"
log_dir = "` + filepath.Join(base, "logs") + `"
`
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
