package compose

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"handsynth/internal/domain"
)

// LineRaster points at one rasterized line in run temp storage. Lines that
// failed synthesis are simply absent; their vertical slots stay reserved.
type LineRaster struct {
	Index int
	Path  string
}

// Page is the assembled canvas after trimming and padding, ready for the
// encoder.
type Page struct {
	Image *image.RGBA
}

// Compositor assembles rasterized lines onto a page canvas.
type Compositor struct {
	openImage func(path string) (image.Image, error)
}

// NewCompositor builds a compositor reading images from the filesystem.
func NewCompositor() *Compositor {
	return &Compositor{openImage: openImageFile}
}

// NewCompositorForTests builds a compositor with an injected image loader.
func NewCompositorForTests(openImage func(path string) (image.Image, error)) *Compositor {
	return &Compositor{openImage: openImage}
}

// Compose lays out lines top-to-bottom in index order, routing them around
// the placed image when one is configured, then trims the page to its
// content and pads it uniformly. lineCount is the total number of prepared
// lines including ones that produced no raster. Recoverable problems are
// returned as warnings.
func (c *Compositor) Compose(lines []LineRaster, lineCount int, params domain.RunParameters) (*Page, []string, error) {
	if lineCount < len(lines) {
		return nil, nil, fmt.Errorf("line count %d below raster count %d", lineCount, len(lines))
	}

	var warnings []string
	canvas := image.NewRGBA(image.Rect(0, 0, PageWidth, baseHeight+params.LineSpacing*lineCount))

	var obstacle image.Rectangle
	hasObstacle := false
	wrap := domain.WrapBoth
	if p := params.Placement; p != nil {
		placed, err := c.loadPlacement(p)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("image placement: %v", err))
		} else {
			draw.Draw(canvas, image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height), placed, image.Point{}, draw.Over)
			obstacle = image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
			hasObstacle = true
			wrap = p.WrapStyle
		}
	}

	for _, line := range lines {
		img, err := c.openImage(line.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("compose line %d: %v", line.Index+1, err))
			continue
		}

		w := img.Bounds().Dx()
		h := img.Bounds().Dy()
		y := params.LineSpacing * (line.Index + 1)
		x := defaultX(params.Alignment, w)
		if hasObstacle {
			x = avoidObstacle(x, y, w, h, obstacle, wrap)
		}

		draw.Draw(canvas, image.Rect(x, y, x+w, y+h), img, img.Bounds().Min, draw.Over)
	}

	content, ok := contentBounds(canvas)
	if !ok {
		// Fully transparent page: keep the allocated canvas so padding
		// still yields a valid image.
		content = canvas.Bounds()
	}

	final := image.NewRGBA(image.Rect(0, 0, content.Dx()+2*padMargin, content.Dy()+2*padMargin))
	draw.Draw(final, image.Rect(padMargin, padMargin, padMargin+content.Dx(), padMargin+content.Dy()),
		canvas, content.Min, draw.Over)

	return &Page{Image: final}, warnings, nil
}

// loadPlacement loads and resizes the placed image to its configured box.
func (c *Compositor) loadPlacement(p *domain.ImagePlacement) (*image.RGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("placement size %dx%d is empty", p.Width, p.Height)
	}
	img, err := c.openImage(p.Path)
	if err != nil {
		return nil, err
	}
	return Resize(img, p.Width, p.Height), nil
}

// Resize scales img to w x h with deterministic CatmullRom resampling.
func Resize(img image.Image, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return out
}

// openImageFile decodes any registered image format from disk.
func openImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
