package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"handsynth/internal/domain"
)

// Checker validates the synthesis model command and required filesystem
// paths before a run is allowed to start.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkModelCommand(settings.ModelCommand),
		c.checkOutputDir(settings.OutputDir),
		c.checkDefaults(settings.Defaults),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkModelCommand verifies the stroke model executable is reachable. The
// setting may be a bare command name or an absolute path.
func (c *Checker) checkModelCommand(command string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "model_command",
		Name: "Synthesis model",
	}

	name := strings.TrimSpace(command)
	if name == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Model command is empty."
		item.Hint = "Set the handwriting model command in settings."
		return item
	}

	if strings.ContainsRune(name, os.PathSeparator) {
		info, err := c.stat(name)
		if err != nil {
			item.Status = domain.DiagnosticStatusFail
			if errors.Is(err, os.ErrNotExist) {
				item.Message = fmt.Sprintf("Model executable does not exist: %s", name)
			} else {
				item.Message = fmt.Sprintf("Cannot access model executable: %s", name)
			}
			item.Hint = "Install the handwriting model and point settings at its binary."
			return item
		}
		if info.IsDir() {
			item.Status = domain.DiagnosticStatusFail
			item.Message = fmt.Sprintf("Model command points at a directory: %s", name)
			item.Hint = "Point settings at the model executable, not its folder."
			return item
		}

		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("Model executable found: %s", name)
		return item
	}

	path, err := c.lookPath(name)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Model command not found in PATH: %s", name)
		item.Hint = "Install the handwriting model and ensure the binary is available on PATH."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where generated pages can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for page export."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// checkDefaults validates the saved default run parameters.
func (c *Checker) checkDefaults(params domain.RunParameters) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "defaults",
		Name: "Default parameters",
	}

	var problems []string
	if params.MaxLineWidth <= 0 {
		problems = append(problems, fmt.Sprintf("max line width must be positive, got %d", params.MaxLineWidth))
	}
	if params.LineSpacing <= 0 {
		problems = append(problems, fmt.Sprintf("line spacing must be positive, got %d", params.LineSpacing))
	}
	if params.LegibilityBias < 0 || params.LegibilityBias > 1 {
		problems = append(problems, fmt.Sprintf("legibility bias must be within [0, 1], got %g", params.LegibilityBias))
	}
	if params.StrokeWidth <= 0 {
		problems = append(problems, fmt.Sprintf("stroke width must be positive, got %g", params.StrokeWidth))
	}

	if len(problems) > 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = strings.Join(problems, "; ")
		item.Hint = "Reset defaults in settings to restore a valid configuration."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Defaults are valid."
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// IsNotExist reports whether error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
