package config

import (
	"os"
	"path/filepath"
	"testing"

	"handsynth/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.ModelCommand == "" {
		t.Fatal("expected non-empty model command")
	}
	if cfg.OutputDir == "" {
		t.Fatal("expected non-empty output dir")
	}
	if cfg.Defaults.ExportFormat != domain.FormatPNG {
		t.Fatalf("export format = %q, want png", cfg.Defaults.ExportFormat)
	}
	if cfg.Defaults.JPGQuality < 50 || cfg.Defaults.JPGQuality > 100 {
		t.Fatalf("jpg quality = %d, want 50-100", cfg.Defaults.JPGQuality)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ModelCommand != DefaultSettings().ModelCommand {
		t.Fatalf("model command = %q, want default", got.ModelCommand)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := DefaultSettings()
	want.OutputDir = "/out"
	want.Defaults.Alignment = domain.AlignMiddle
	want.Defaults.LineSpacing = 100

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OutputDir != "/out" || got.Defaults.Alignment != domain.AlignMiddle || got.Defaults.LineSpacing != 100 {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadBackfillsStaleFile checks defaults for older prefs files.
func TestJSONStoreLoadBackfillsStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"outputDir":"/old"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OutputDir != "/old" {
		t.Fatalf("output dir = %q, want /old", got.OutputDir)
	}
	if got.Defaults.MaxLineWidth <= 0 || got.Defaults.StrokeColor == "" {
		t.Fatalf("stale file not backfilled: %+v", got.Defaults)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
