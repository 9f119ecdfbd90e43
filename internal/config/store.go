package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"handsynth/internal/domain"
)

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore persists settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads settings from disk or returns defaults when missing.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}

		return domain.Settings{}, err
	}

	var cfg domain.Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, err
	}

	return fillDefaults(cfg), nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// fillDefaults backfills zero-valued fields from older settings files so a
// stale prefs file never yields an unrenderable parameter set.
func fillDefaults(cfg domain.Settings) domain.Settings {
	def := DefaultSettings()
	if cfg.ModelCommand == "" {
		cfg.ModelCommand = def.ModelCommand
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.Defaults.StrokeColor == "" {
		cfg.Defaults.StrokeColor = def.Defaults.StrokeColor
	}
	if cfg.Defaults.MaxLineWidth <= 0 {
		cfg.Defaults.MaxLineWidth = def.Defaults.MaxLineWidth
	}
	if cfg.Defaults.LineSpacing <= 0 {
		cfg.Defaults.LineSpacing = def.Defaults.LineSpacing
	}
	if cfg.Defaults.StrokeWidth <= 0 {
		cfg.Defaults.StrokeWidth = def.Defaults.StrokeWidth
	}
	if cfg.Defaults.Alignment == "" {
		cfg.Defaults.Alignment = def.Defaults.Alignment
	}
	if cfg.Defaults.ExportFormat == "" {
		cfg.Defaults.ExportFormat = def.Defaults.ExportFormat
	}
	if cfg.Defaults.Background.Type == "" {
		cfg.Defaults.Background.Type = def.Defaults.Background.Type
	}
	if cfg.Defaults.JPGQuality < 50 || cfg.Defaults.JPGQuality > 100 {
		cfg.Defaults.JPGQuality = def.Defaults.JPGQuality
	}
	return cfg
}
