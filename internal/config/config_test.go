package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedConstants(t *testing.T) {
	cfg := Default()
	if cfg.MaxRetries != 10 {
		t.Errorf("MaxRetries = %d, want 10", cfg.MaxRetries)
	}
	if cfg.MaxScopeDepth != 64 {
		t.Errorf("MaxScopeDepth = %d, want 64", cfg.MaxScopeDepth)
	}
	if cfg.StrictReferences {
		t.Errorf("StrictReferences = true, want false")
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "en")
	}
}

func TestLoadOverridesDefaultsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	content := "maxRetries: 3\nstrictReferences: true\ndefaultLocale: cy\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if !cfg.StrictReferences {
		t.Errorf("StrictReferences = false, want true")
	}
	if cfg.DefaultLocale != "cy" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "cy")
	}
	if cfg.MaxScopeDepth != 64 {
		t.Errorf("expected MaxScopeDepth to keep its default, got %d", cfg.MaxScopeDepth)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoadMalformedYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("maxRetries: [this is not an int"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}
