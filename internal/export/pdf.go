package export

import (
	"fmt"
	"image"
	"os"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
)

// A4 page geometry in millimeters, with a 50pt print margin.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	ptToMM       = 25.4 / 72.0
	marginMM     = 50.0 * ptToMM
)

// CanvasPDFWriter renders a raster onto an A4 PDF page, scaled to fit the
// printable area, centered, and never upscaled (one pixel maps to at most
// one point).
type CanvasPDFWriter struct{}

// NewCanvasPDFWriter constructs the production PDF writer.
func NewCanvasPDFWriter() *CanvasPDFWriter {
	return &CanvasPDFWriter{}
}

// WritePDF writes img as a single-page PDF at path.
func (w *CanvasPDFWriter) WritePDF(img image.Image, path string) error {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("image has no extent")
	}

	imgWidthMM := float64(bounds.Dx()) * ptToMM
	imgHeightMM := float64(bounds.Dy()) * ptToMM
	maxWidthMM := pageWidthMM - 2*marginMM
	maxHeightMM := pageHeightMM - 2*marginMM

	scale := min(maxWidthMM/imgWidthMM, maxHeightMM/imgHeightMM, 1.0)
	targetWidthMM := imgWidthMM * scale
	targetHeightMM := imgHeightMM * scale

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := pdf.New(f, pageWidthMM, pageHeightMM, nil)
	c := canvas.New(pageWidthMM, pageHeightMM)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	x := (pageWidthMM - targetWidthMM) / 2
	y := (pageHeightMM - targetHeightMM) / 2
	dpmm := float64(bounds.Dx()) / targetWidthMM
	ctx.DrawImage(x, y, img, canvas.DPMM(dpmm))

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
