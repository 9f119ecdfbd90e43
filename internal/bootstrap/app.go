package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"handsynth/internal/config"
	"handsynth/internal/diagnostics"
	"handsynth/internal/domain"
	"handsynth/internal/generate"
	"handsynth/internal/jobs"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// settleDelay is the pause between queued runs so the UI can render the
// finished page before the next one starts.
const settleDelay = 500 * time.Millisecond

var placementDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Images",
		Pattern:     "*.png;*.jpg;*.jpeg;*.gif",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, queue, pipeline, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Queue       *jobs.Queue
	Tracker     *jobs.Tracker
	Pipeline    pipelineRunner
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker

	mu          sync.Mutex
	activeJobID string
	cancel      context.CancelFunc
	events      *jobs.EventBus
	runtimeCtx  context.Context
	sleep       func(time.Duration)
}

// pipelineRunner isolates the synthesis pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req generate.Request) (generate.Result, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".handsynth", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	return &App{
		Settings:    settings,
		Store:       store,
		Queue:       jobs.NewQueue(),
		Tracker:     jobs.NewTracker(),
		Pipeline:    generate.NewDefaultPipeline(settings.ModelCommand),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		events:      jobs.NewEventBus(1000),
		sleep:       time.Sleep,
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Handwriting Synthesis",
		Width:       1180,
		Height:      820,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report. Wails
// dispatches bound calls concurrently, so the cache read takes the lock.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()
	return report, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// ListStyles returns the available handwriting style options.
func (a *App) ListStyles() []domain.StyleOption {
	return StyleCatalog()
}

// ValidateDraft checks text against the model alphabet without mutating
// queue state. It returns the normalized text and the distinct characters
// that would be removed under auto-removal.
func (a *App) ValidateDraft(text string) (string, []string, error) {
	normalized := domain.NormalizeText(text)
	filtered, removed := domain.FilterText(normalized)

	removedStrings := make([]string, 0, len(removed))
	for _, r := range removed {
		removedStrings = append(removedStrings, string(r))
	}
	if err := domain.ValidateText(filtered); err != nil {
		return "", removedStrings, err
	}
	return normalized, removedStrings, nil
}

// Submit validates text and appends a job to the queue.
func (a *App) Submit(text, displayName string) (domain.QueuedJob, error) {
	prepared, err := a.prepareText(text)
	if err != nil {
		return domain.QueuedJob{}, err
	}

	job := a.Queue.Enqueue(jobs.NewJob(prepared, displayName))
	a.publishQueueChanged()
	return job, nil
}

// Generate validates text and starts an immediate single run, bypassing
// the queue. It fails if a run is already active or the queue is draining;
// between queued runs the tracker is briefly terminal, and an immediate run
// slipping into that window would starve the remaining queue items.
func (a *App) Generate(text, displayName string) (domain.QueuedJob, error) {
	if a.Queue.State() == jobs.QueueProcessing {
		return domain.QueuedJob{}, jobs.ErrQueueProcessing
	}

	prepared, err := a.prepareText(text)
	if err != nil {
		return domain.QueuedJob{}, err
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.QueuedJob{}, fmt.Errorf("load settings: %w", err)
	}

	job := jobs.NewJob(prepared, displayName)
	if err := a.Tracker.Start(job.ID); err != nil {
		return domain.QueuedJob{}, err
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	go func() {
		result := a.runJob(job, nameSuffix(displayName, 0), settings)
		a.publishResult(job.ID, result, true)
	}()
	return job, nil
}

// StartQueue begins draining the queue in submission order. Each item runs
// to a terminal outcome before the next starts; a cancelled item never
// discards the remainder. Illegal while an immediate run holds the tracker;
// the queue must never consume items it cannot execute.
func (a *App) StartQueue() error {
	if a.Tracker.IsActive() {
		return jobs.ErrRunActive
	}

	settings, err := a.Store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	first, err := a.Queue.Start()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	go a.drainQueue(first, settings)
	return nil
}

// CancelCurrentRun cancels the in-flight run, if any. During a queue drain
// the queue advances to the next item afterwards.
func (a *App) CancelCurrentRun() error {
	a.mu.Lock()
	cancel := a.cancel
	activeJobID := a.activeJobID
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoActiveRun
	}

	cancel()
	if err := a.Tracker.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoActiveRun) {
		return err
	}

	if activeJobID != "" {
		a.publishStatus(activeJobID, domain.RunStatusCancelled, "Cancellation requested")
	}
	return nil
}

// RemoveJob deletes a pending queue item. The in-flight item cannot be removed.
func (a *App) RemoveJob(id string) error {
	if err := a.Queue.Remove(id); err != nil {
		return err
	}
	a.publishQueueChanged()
	return nil
}

// ClearQueue discards all pending items. Illegal while the queue is draining.
func (a *App) ClearQueue() error {
	if err := a.Queue.Clear(); err != nil {
		return err
	}
	a.publishQueueChanged()
	return nil
}

// QueueSnapshot returns current queue contents in position order.
func (a *App) QueueSnapshot() []domain.QueuedJob {
	return a.Queue.Snapshot()
}

// QueueState reports whether the queue is idle or draining.
func (a *App) QueueState() string {
	return string(a.Queue.State())
}

// CurrentRun returns the current run identity and stage.
func (a *App) CurrentRun() jobs.Run {
	return a.Tracker.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// PickPlacementImage opens a native file dialog for placement image selection.
func (a *App) PickPlacementImage() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select image to place on the page",
		Filters: placementDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for page exports.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// drainQueue runs queued items one at a time until the queue is empty.
func (a *App) drainQueue(first domain.QueuedJob, settings domain.Settings) {
	job := first
	position := 0
	for {
		// Immediate runs are rejected while the queue drains, so the
		// tracker can only be held by the terminal state of the previous
		// queued run. Never consume an item without executing it.
		for a.Tracker.Start(job.ID) != nil {
			a.sleep(settleDelay)
		}
		result := a.runJob(job, nameSuffix(job.DisplayName, position+1), settings)

		a.Queue.RecordResult(job.ID, result)
		a.publishResult(job.ID, result, a.Queue.IsLast())

		a.sleep(settleDelay)

		next, ok := a.Queue.Advance()
		if !ok {
			break
		}
		job = next
		position++
	}

	summary := a.Queue.Summary()
	a.publishEvent(jobs.Event{
		Type:    jobs.EventTypeQueue,
		Message: "Queue finished",
		Summary: &summary,
	})
}

// runJob executes a single pipeline run and maps its outcome to run state
// transitions and events. It always returns a terminal result.
func (a *App) runJob(job domain.QueuedJob, suffix string, settings domain.Settings) domain.RunResult {
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeJobID = job.ID
	a.cancel = cancel
	a.mu.Unlock()
	defer a.clearActiveRun(job.ID)

	a.publishStatus(job.ID, domain.RunStatusInitializing, "Run started: "+job.DisplayName)

	req := generate.Request{
		Text:       job.Text,
		Params:     settings.Defaults,
		OutputDir:  settings.OutputDir,
		NameSuffix: suffix,
		OnStage: func(stage domain.RunStatus) {
			if err := a.Tracker.Transition(stage); err == nil {
				a.publishStatus(job.ID, stage, "Running "+string(stage)+" stage")
			}
		},
		OnProgress: func(fraction float64) {
			a.publishEvent(jobs.Event{
				JobID:    job.ID,
				Type:     jobs.EventTypeProgress,
				Progress: fraction,
			})
		},
		OnStatus: func(text string) {
			a.publishEvent(jobs.Event{
				JobID:   job.ID,
				Type:    jobs.EventTypeMessage,
				Message: text,
			})
		},
	}

	result, err := a.Pipeline.Run(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			_ = a.Tracker.Transition(domain.RunStatusCancelled)
			a.publishStatus(job.ID, domain.RunStatusCancelled, "Run cancelled")
			return domain.RunResult{Cancelled: true, Warnings: result.Warnings}
		}

		_ = a.Tracker.Transition(domain.RunStatusFailed)
		a.publishStatus(job.ID, domain.RunStatusFailed, "Run failed")
		a.publishEvent(jobs.Event{
			JobID:   job.ID,
			Type:    jobs.EventTypeError,
			Status:  domain.RunStatusFailed,
			Message: err.Error(),
		})
		return domain.RunResult{Warnings: result.Warnings}
	}

	if result.Cancelled {
		_ = a.Tracker.Transition(domain.RunStatusCancelled)
		a.publishStatus(job.ID, domain.RunStatusCancelled, "Run cancelled")
		return domain.RunResult{Cancelled: true, Warnings: result.Warnings}
	}

	if err := a.Tracker.Transition(domain.RunStatusDone); err == nil {
		a.publishStatus(job.ID, domain.RunStatusDone, "Run completed")
	}
	return domain.RunResult{
		OutputFiles: result.OutputFiles,
		Warnings:    result.Warnings,
	}
}

// prepareText normalizes a submission and applies the configured invalid
// character policy.
func (a *App) prepareText(text string) (string, error) {
	a.mu.Lock()
	autoRemove := a.Settings.AutoRemoveInvalid
	a.mu.Unlock()

	normalized := domain.NormalizeText(text)
	if autoRemove {
		filtered, _ := domain.FilterText(normalized)
		normalized = filtered
	}
	if err := domain.ValidateText(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// publishResult sends the terminal event for one run. Only the page of the
// last queue position is offered for preview.
func (a *App) publishResult(jobID string, result domain.RunResult, showPreview bool) {
	event := jobs.Event{
		JobID:       jobID,
		Type:        jobs.EventTypeResult,
		Message:     "Page exported",
		Warnings:    result.Warnings,
		OutputFiles: result.OutputFiles,
		ShowPreview: showPreview && !result.Cancelled && len(result.OutputFiles) > 0,
	}
	if result.Cancelled {
		event.Status = domain.RunStatusCancelled
		event.Message = "Run cancelled"
	} else {
		event.Status = domain.RunStatusDone
	}
	a.publishEvent(event)
}

// publishQueueChanged notifies subscribers that queue contents changed.
func (a *App) publishQueueChanged() {
	a.publishEvent(jobs.Event{
		Type:    jobs.EventTypeQueue,
		Message: fmt.Sprintf("Queue updated: %d pending", a.Queue.Len()),
	})
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.RunStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "run:event", published)
	}
}

// clearActiveRun clears cancellation handles for completed job IDs.
func (a *App) clearActiveRun(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeJobID == jobID {
		a.activeJobID = ""
		a.cancel = nil
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// nameSuffix derives the output filename suffix for a run. Named runs get
// a sanitized name part; unnamed queued runs get their queue position.
func nameSuffix(displayName string, queuePosition int) string {
	sanitized := sanitizeNamePart(displayName)
	if sanitized != "" {
		return "-" + sanitized
	}
	if queuePosition > 0 {
		return fmt.Sprintf("-queue-%d", queuePosition)
	}
	return ""
}

// sanitizeNamePart keeps filename-safe characters and joins words with dashes.
func sanitizeNamePart(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// normalizeSettings trims user inputs and backfills unset run parameters.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.ModelCommand = strings.TrimSpace(settings.ModelCommand)
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)

	defaults := config.DefaultSettings()
	if settings.ModelCommand == "" {
		settings.ModelCommand = defaults.ModelCommand
	}
	if settings.OutputDir == "" {
		settings.OutputDir = defaults.OutputDir
	}
	if settings.Defaults.MaxLineWidth <= 0 {
		settings.Defaults.MaxLineWidth = defaults.Defaults.MaxLineWidth
	}
	if settings.Defaults.LineSpacing <= 0 {
		settings.Defaults.LineSpacing = defaults.Defaults.LineSpacing
	}
	if settings.Defaults.StrokeWidth <= 0 {
		settings.Defaults.StrokeWidth = defaults.Defaults.StrokeWidth
	}
	if settings.Defaults.StrokeColor == "" {
		settings.Defaults.StrokeColor = defaults.Defaults.StrokeColor
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
