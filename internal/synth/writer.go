package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Drawing is the vector output of one synthesized line: pen strokes as SVG
// path data in a top-left-origin coordinate box of Width x Height pixels.
type Drawing struct {
	Paths  []string `json:"paths"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// Request carries the per-line inputs for the stroke model.
type Request struct {
	Text        string
	Bias        float64
	StyleIndex  int
	StrokeColor string
	StrokeWidth float64
	OutPath     string
}

// StrokeWriter produces a vector drawing for one line of text. A failed call
// must stay contained to that line; callers record it as a warning.
type StrokeWriter interface {
	Write(ctx context.Context, req Request) (Drawing, error)
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// ModelWriter invokes the external handwriting model command. The command
// writes a drawing JSON file at OutPath which is decoded after it exits.
type ModelWriter struct {
	command  string
	runner   commandRunner
	readFile func(name string) ([]byte, error)
}

// NewModelWriter constructs the production writer for the given command.
func NewModelWriter(command string) *ModelWriter {
	return &ModelWriter{
		command:  command,
		runner:   &execRunner{},
		readFile: os.ReadFile,
	}
}

// Write runs the model once and decodes the drawing it produced.
func (w *ModelWriter) Write(ctx context.Context, req Request) (Drawing, error) {
	args := buildModelArgs(req)
	result, err := w.runner.Run(ctx, w.command, args...)
	if err != nil {
		return Drawing{}, fmt.Errorf("model command failed (exit=%d): %w", result.ExitCode, err)
	}

	data, err := w.readFile(req.OutPath)
	if err != nil {
		return Drawing{}, fmt.Errorf("model completed but drawing file is missing: %w", err)
	}

	var drawing Drawing
	if err := json.Unmarshal(data, &drawing); err != nil {
		return Drawing{}, fmt.Errorf("decode drawing: %w", err)
	}
	if drawing.Width <= 0 || drawing.Height <= 0 || len(drawing.Paths) == 0 {
		return Drawing{}, fmt.Errorf("model returned an empty drawing for %q", req.Text)
	}

	return drawing, nil
}

// buildModelArgs builds the model CLI invocation for one line.
func buildModelArgs(req Request) []string {
	return []string{
		"--text", req.Text,
		"--bias", fmt.Sprintf("%.4f", req.Bias),
		"--style", fmt.Sprintf("%d", req.StyleIndex),
		"--color", req.StrokeColor,
		"--stroke-width", fmt.Sprintf("%.3f", req.StrokeWidth),
		"--out", req.OutPath,
	}
}

// NewModelWriterForTests constructs a writer with injectable dependencies.
func NewModelWriterForTests(
	command string,
	runner commandRunner,
	readFile func(name string) ([]byte, error),
) *ModelWriter {
	return &ModelWriter{
		command:  command,
		runner:   runner,
		readFile: readFile,
	}
}
