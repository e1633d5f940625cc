package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tankobon/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected no config file in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "tankobon", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Packing.CeilingMB != 47 {
		t.Fatalf("unexpected ceiling: %d", cfg.Packing.CeilingMB)
	}
	if cfg.CeilingBytes() != 47*1024*1024 {
		t.Fatalf("unexpected ceiling bytes: %d", cfg.CeilingBytes())
	}
	if cfg.Packing.IntegerChapters {
		t.Fatal("expected fractional chapters by default")
	}
	if cfg.KCC.Binary != "kcc-c2e" || cfg.KCC.Profile != "KPW5" {
		t.Fatalf("unexpected kcc defaults: %+v", cfg.KCC)
	}
	if cfg.Email.Enabled {
		t.Fatal("expected email delivery disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q, err=%v", dir, err)
		}
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "tankobon.toml")
	content := `
[paths]
staging_dir = "~/scratch"

[packing]
ceiling_mb = 24
integer_chapters = true

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.StagingDir != filepath.Join(tempHome, "scratch") {
		t.Fatalf("expected ~ expansion, got %q", cfg.Paths.StagingDir)
	}
	if cfg.Packing.CeilingMB != 24 || !cfg.Packing.IntegerChapters {
		t.Fatalf("unexpected packing config: %+v", cfg.Packing)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
	// Unset sections keep defaults.
	if cfg.KCC.Profile != "KPW5" {
		t.Fatalf("expected default profile, got %q", cfg.KCC.Profile)
	}
}

func TestValidateEmailRequiresCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Email.Enabled = true
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for enabled email without credentials")
	}
	if !strings.Contains(err.Error(), "email.username") {
		t.Fatalf("expected missing field listed, got %v", err)
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad log format")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error on existing file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[packing]") {
		t.Fatalf("sample config missing packing section: %q", data)
	}
}
