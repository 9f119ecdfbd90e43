package generate

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"handsynth/internal/compose"
	"handsynth/internal/domain"
	"handsynth/internal/export"
	"handsynth/internal/synth"
)

// Progress milestones, as fractions of a full run. Synthesis dominates the
// budget; rasterization and saving share the remainder.
const (
	progressInit     = 0.10
	progressPrepared = 0.15
	synthShare       = 0.60
	rasterShare      = 0.20
)

// Request contains one run's inputs and controller callbacks. Params is an
// immutable snapshot; the pipeline never reads live settings.
type Request struct {
	Text       string
	Params     domain.RunParameters
	OutputDir  string
	NameSuffix string
	OnStage    func(stage domain.RunStatus)
	OnProgress func(fraction float64)
	OnStatus   func(text string)
}

// Result is the terminal outcome of one run. Warnings carry every recovered
// per-line and per-feature failure; cancelled results never list output
// files.
type Result struct {
	FileID      string
	OutputFiles []string
	Warnings    []string
	Cancelled   bool
}

// RunError is a stage-aware fatal pipeline error. Per-line failures never
// surface here; they are downgraded to warnings.
type RunError struct {
	Stage   domain.RunStatus
	Message string
	Err     error
}

// Error formats pipeline failures for logs and UI.
func (e *RunError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// lineSynthesizer isolates the synthesizer adapter behind an interface.
type lineSynthesizer interface {
	WriteLine(ctx context.Context, dir string, line synth.Line, params domain.RunParameters) error
	RasterizeLine(dir string, line synth.Line, params domain.RunParameters) (string, error)
}

// pageCompositor isolates the document compositor behind an interface.
type pageCompositor interface {
	Compose(lines []compose.LineRaster, lineCount int, params domain.RunParameters) (*compose.Page, []string, error)
}

// pageEncoder isolates the output encoder behind an interface.
type pageEncoder interface {
	Encode(page *compose.Page, params domain.RunParameters, basePath string) ([]string, []string, error)
}

// Pipeline orchestrates one end-to-end generation run: synthesize each line,
// rasterize, compose the page, encode the artifact. It owns the run's
// temporary storage and guarantees its removal on every exit path.
type Pipeline struct {
	synthesizer lineSynthesizer
	compositor  pageCompositor
	encoder     pageEncoder
	mkdirTemp   func(dir, pattern string) (string, error)
	removeAll   func(path string) error
	mkdirAll    func(path string, perm os.FileMode) error
	newFileID   func() string
	now         func() time.Time
}

// NewPipeline constructs the production pipeline.
func NewPipeline(synthesizer *synth.Adapter, compositor *compose.Compositor, encoder pageEncoder) *Pipeline {
	return &Pipeline{
		synthesizer: synthesizer,
		compositor:  compositor,
		encoder:     encoder,
		mkdirTemp:   os.MkdirTemp,
		removeAll:   os.RemoveAll,
		mkdirAll:    os.MkdirAll,
		newFileID:   randomFileID,
		now:         time.Now,
	}
}

// NewDefaultPipeline wires the production stages around the configured
// stroke model command.
func NewDefaultPipeline(modelCommand string) *Pipeline {
	return NewPipeline(
		synth.NewAdapter(synth.NewModelWriter(modelCommand)),
		compose.NewCompositor(),
		export.NewEncoder(export.NewCanvasPDFWriter()),
	)
}

// Run executes one generation run on the calling goroutine. Cancellation is
// observed through ctx at line boundaries only, never mid-line; a cancelled
// run reports Cancelled without writing output files.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, &RunError{Stage: domain.RunStatusInitializing, Message: "no text to generate"}
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return Result{}, &RunError{Stage: domain.RunStatusInitializing, Message: "output directory is required"}
	}

	emitStage(req, domain.RunStatusInitializing)
	emitStatus(req, "Initializing model")
	emitProgress(req, progressInit)

	lines := synth.PrepareLines(req.Text, req.Params.MaxLineWidth)
	if len(lines) == 0 {
		return Result{}, &RunError{Stage: domain.RunStatusInitializing, Message: "no renderable lines"}
	}

	tempDir, err := p.mkdirTemp("", "handsynth-*")
	if err != nil {
		return Result{}, &RunError{
			Stage:   domain.RunStatusInitializing,
			Message: "failed to create temporary workspace",
			Err:     err,
		}
	}
	defer func() { _ = p.removeAll(tempDir) }()

	emitStatus(req, "Preparing lines")
	emitProgress(req, progressPrepared)

	var warnings []string
	failed := make([]bool, len(lines))

	emitStage(req, domain.RunStatusSynthesizing)
	start := p.now()
	for i, line := range lines {
		if cancelled(ctx) {
			return Result{Cancelled: true, Warnings: warnings}, nil
		}

		emitStatus(req, etaStatus("Synthesizing lines", i, len(lines), p.now().Sub(start)))
		if err := p.synthesizer.WriteLine(ctx, tempDir, line, req.Params); err != nil {
			if cancelled(ctx) {
				return Result{Cancelled: true, Warnings: warnings}, nil
			}
			warnings = append(warnings, fmt.Sprintf("synthesize line %d: %v", i+1, err))
			failed[i] = true
		}
		emitProgress(req, progressPrepared+synthShare*float64(i+1)/float64(len(lines)))
	}

	emitStage(req, domain.RunStatusRasterizing)
	var rasters []compose.LineRaster
	start = p.now()
	for i, line := range lines {
		if cancelled(ctx) {
			return Result{Cancelled: true, Warnings: warnings}, nil
		}

		emitStatus(req, etaStatus("Rasterizing", i, len(lines), p.now().Sub(start)))
		if !failed[i] {
			path, err := p.synthesizer.RasterizeLine(tempDir, line, req.Params)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("rasterize line %d: %v", i+1, err))
			} else {
				rasters = append(rasters, compose.LineRaster{Index: line.Index, Path: path})
			}
		}
		emitProgress(req, progressPrepared+synthShare+rasterShare*float64(i+1)/float64(len(lines)))
	}

	if cancelled(ctx) {
		return Result{Cancelled: true, Warnings: warnings}, nil
	}

	emitStage(req, domain.RunStatusComposing)
	emitStatus(req, "Combining lines")
	page, composeWarnings, err := p.compositor.Compose(rasters, len(lines), req.Params)
	warnings = append(warnings, composeWarnings...)
	if err != nil {
		return Result{Warnings: warnings}, &RunError{
			Stage:   domain.RunStatusComposing,
			Message: "page composition failed",
			Err:     err,
		}
	}

	if cancelled(ctx) {
		return Result{Cancelled: true, Warnings: warnings}, nil
	}

	emitStage(req, domain.RunStatusEncoding)
	emitStatus(req, "Saving output")
	if err := p.mkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{Warnings: warnings}, &RunError{
			Stage:   domain.RunStatusEncoding,
			Message: fmt.Sprintf("cannot create output directory: %s", req.OutputDir),
			Err:     err,
		}
	}

	fileID := p.newFileID()
	basePath := filepath.Join(req.OutputDir, fileID+req.NameSuffix)
	paths, encodeWarnings, err := p.encoder.Encode(page, req.Params, basePath)
	warnings = append(warnings, encodeWarnings...)
	if err != nil {
		return Result{FileID: fileID, Warnings: warnings}, &RunError{
			Stage:   domain.RunStatusEncoding,
			Message: "encoding failed",
			Err:     err,
		}
	}

	emitProgress(req, 1.0)
	return Result{
		FileID:      fileID,
		OutputFiles: paths,
		Warnings:    warnings,
	}, nil
}

// cancelled reports whether the run's context has been cancelled. Checked at
// line boundaries only, so cancellation latency is bounded by one line.
func cancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}

// etaStatus renders a progress line with a running ETA from the average
// time per completed unit.
func etaStatus(verb string, done, total int, elapsed time.Duration) string {
	if done == 0 {
		return fmt.Sprintf("%s (%d/%d)", verb, 1, total)
	}
	avg := elapsed / time.Duration(done)
	remain := avg * time.Duration(total-done)
	return fmt.Sprintf("%s (%d/%d, ETA ~%ds)", verb, done+1, total, int(remain.Seconds()))
}

// fileIDAlphabet matches the output naming scheme: six uppercase
// alphanumerics keyed per run.
const fileIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomFileID returns a six-character random run identifier.
func randomFileID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = fileIDAlphabet[rand.Intn(len(fileIDAlphabet))]
	}
	return string(b)
}

func emitStage(req Request, stage domain.RunStatus) {
	if req.OnStage != nil {
		req.OnStage(stage)
	}
}

func emitProgress(req Request, fraction float64) {
	if req.OnProgress != nil {
		req.OnProgress(fraction)
	}
}

func emitStatus(req Request, text string) {
	if req.OnStatus != nil {
		req.OnStatus(text)
	}
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	synthesizer lineSynthesizer,
	compositor pageCompositor,
	encoder pageEncoder,
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	newFileID func() string,
) *Pipeline {
	return &Pipeline{
		synthesizer: synthesizer,
		compositor:  compositor,
		encoder:     encoder,
		mkdirTemp:   mkdirTemp,
		removeAll:   removeAll,
		mkdirAll:    os.MkdirAll,
		newFileID:   newFileID,
		now:         time.Now,
	}
}
