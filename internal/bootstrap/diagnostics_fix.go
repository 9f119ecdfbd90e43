package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"handsynth/internal/config"
	"handsynth/internal/domain"
)

// FixDiagnostic applies a remediation for one failed diagnostic item and
// returns the refreshed report. Missing model binaries cannot be fixed
// automatically; the caller gets an error pointing at settings.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	settingsChanged := false
	var fixErr error

	switch id {
	case "model_command":
		fixErr = fmt.Errorf("the stroke model must be installed manually; set its command or path in settings")
	case "output_dir":
		settings, settingsChanged, fixErr = fixOutputDir(settings)
	case "defaults":
		settings.Defaults = config.DefaultSettings().Defaults
		settingsChanged = true
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
	}
	return a.Diagnostics
}

// fixOutputDir creates the configured output directory, falling back to the
// default location when the setting is empty.
func fixOutputDir(settings domain.Settings) (domain.Settings, bool, error) {
	changed := false
	if strings.TrimSpace(settings.OutputDir) == "" {
		settings.OutputDir = config.DefaultSettings().OutputDir
		changed = true
	}

	if err := os.MkdirAll(settings.OutputDir, 0o755); err != nil {
		return settings, changed, fmt.Errorf("create output directory: %w", err)
	}
	return settings, changed, nil
}
