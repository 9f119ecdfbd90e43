package synth

import (
	"fmt"
	"image"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// Blank placeholder raster dimensions, one logical empty line of spacing.
const (
	blankWidth  = 2000
	blankHeight = 120
)

// RasterizeDrawing strokes a vector drawing onto a canvas and renders it to
// an RGBA image at one pixel per drawing unit. Pure: same drawing and style
// always yield the same pixels.
func RasterizeDrawing(d Drawing, strokeColor color.RGBA, strokeWidth float64) (*image.RGBA, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("drawing has no extent (%gx%g)", d.Width, d.Height)
	}

	c := canvas.New(d.Width, d.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // drawing coordinates are top-left origin
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(strokeColor)
	ctx.SetStrokeWidth(strokeWidth)
	ctx.SetStrokeCapper(canvas.RoundCap)
	ctx.SetStrokeJoiner(canvas.RoundJoin)

	for i, data := range d.Paths {
		path, err := canvas.ParseSVGPath(data)
		if err != nil {
			return nil, fmt.Errorf("parse stroke %d: %w", i, err)
		}
		ctx.DrawPath(0, 0, path)
	}

	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace), nil
}

// BlankRaster returns the fixed-size transparent placeholder used for empty
// source lines.
func BlankRaster() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, blankWidth, blankHeight))
}
