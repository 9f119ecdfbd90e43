package config

import (
	"os"
	"path/filepath"

	"handsynth/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		ModelCommand:      "handsynth-model",
		OutputDir:         filepath.Join(homeDir, "Documents", "Handwriting"),
		AutoRemoveInvalid: false,
		Defaults: domain.RunParameters{
			LegibilityBias: 0.7,
			StrokeWidth:    1.0,
			StyleIndex:     0,
			StrokeColor:    "#000000",
			MaxLineWidth:   60,
			LineSpacing:    80,
			Alignment:      domain.AlignLeft,
			Background:     domain.BackgroundSpec{Type: domain.BackgroundTransparent, Color: "#FFFFFF"},
			ExportFormat:   domain.FormatPNG,
			JPGQuality:     95,
		},
	}
}
