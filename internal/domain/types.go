package domain

// RunStatus tracks each pipeline stage for a single generation run.
type RunStatus string

const (
	RunStatusIdle         RunStatus = "idle"
	RunStatusInitializing RunStatus = "initializing"
	RunStatusSynthesizing RunStatus = "synthesizing"
	RunStatusRasterizing  RunStatus = "rasterizing"
	RunStatusComposing    RunStatus = "composing"
	RunStatusEncoding     RunStatus = "encoding"
	RunStatusDone         RunStatus = "done"
	RunStatusFailed       RunStatus = "failed"
	RunStatusCancelled    RunStatus = "cancelled"
)

// Alignment selects the default horizontal position of each line.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignMiddle Alignment = "middle"
	AlignRight  Alignment = "right"
)

// WrapStyle selects which side of a placed image text routes around.
type WrapStyle string

const (
	WrapLeft  WrapStyle = "left"
	WrapRight WrapStyle = "right"
	WrapBoth  WrapStyle = "both"
)

// ExportFormat selects the output artifact encoding.
type ExportFormat string

const (
	FormatPNG ExportFormat = "png"
	FormatJPG ExportFormat = "jpg"
	FormatPDF ExportFormat = "pdf"
)

// BackgroundType selects how the page is backed before encoding.
type BackgroundType string

const (
	BackgroundTransparent BackgroundType = "transparent"
	BackgroundWhite       BackgroundType = "white"
	BackgroundColor       BackgroundType = "color"
	BackgroundImage       BackgroundType = "image"
)

// ImagePlacement defines the rectangular obstacle text must route around.
type ImagePlacement struct {
	Path      string    `json:"path"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	WrapStyle WrapStyle `json:"wrapStyle"`
}

// BackgroundSpec describes the backing applied before format encoding.
type BackgroundSpec struct {
	Type      BackgroundType `json:"type"`
	Color     string         `json:"color,omitempty"` // #RRGGBB, used when Type is color
	ImagePath string         `json:"imagePath,omitempty"`
}

// RunParameters is the immutable per-run parameter snapshot. It is captured
// once when a run starts; live settings changes never affect an active run.
type RunParameters struct {
	LegibilityBias float64         `json:"legibilityBias"` // [0,1]
	StrokeWidth    float64         `json:"strokeWidth"`
	StyleIndex     int             `json:"styleIndex"`
	StrokeColor    string          `json:"strokeColor"`  // #RRGGBB
	MaxLineWidth   int             `json:"maxLineWidth"` // characters
	LineSpacing    int             `json:"lineSpacing"`  // pixels
	Alignment      Alignment       `json:"alignment"`
	Background     BackgroundSpec  `json:"background"`
	Placement      *ImagePlacement `json:"placement,omitempty"`
	ExportFormat   ExportFormat    `json:"exportFormat"`
	JPGQuality     int             `json:"jpgQuality"` // 50-100
}

// QueuedJob is one submitted text awaiting processing. Immutable after
// creation; owned by the queue until dispatched to a run.
type QueuedJob struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	DisplayName string `json:"displayName"`
	Order       int    `json:"order"`
}

// RunResult is the terminal artifact of one run.
type RunResult struct {
	OutputFiles []string `json:"outputFiles"`
	Warnings    []string `json:"warnings,omitempty"`
	Cancelled   bool     `json:"cancelled"`
}

// Clean reports whether the run finished without warnings or cancellation.
func (r RunResult) Clean() bool {
	return !r.Cancelled && len(r.Warnings) == 0
}

// QueueSummary aggregates per-item outcomes after a queue drain.
type QueueSummary struct {
	Processed    int  `json:"processed"`
	WithWarnings int  `json:"withWarnings"`
	Cancelled    int  `json:"cancelled"`
	AllClean     bool `json:"allClean"`
}

// Settings contains user-selectable runtime configuration persisted between
// sessions. Defaults carries the parameters a run snapshot is built from.
type Settings struct {
	ModelCommand      string        `json:"modelCommand"`
	OutputDir         string        `json:"outputDir"`
	AutoRemoveInvalid bool          `json:"autoRemoveInvalid"`
	Defaults          RunParameters `json:"defaults"`
}
