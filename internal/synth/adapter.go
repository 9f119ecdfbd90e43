package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"handsynth/internal/domain"
)

// Adapter wraps the stroke model and the vector-to-raster conversion for one
// run. Drawings and rasters are written to run-scoped temporary storage so
// peak memory stays bounded for long documents; a failure in either phase is
// contained to its line.
type Adapter struct {
	writer    StrokeWriter
	writeFile func(name string, data []byte, perm os.FileMode) error
	readFile  func(name string) ([]byte, error)
}

// NewAdapter constructs an adapter around the given stroke writer.
func NewAdapter(writer StrokeWriter) *Adapter {
	return &Adapter{
		writer:    writer,
		writeFile: os.WriteFile,
		readFile:  os.ReadFile,
	}
}

// DrawingPath returns the temp-storage location of one line's vector drawing.
func DrawingPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.json", index))
}

// RasterPath returns the temp-storage location of one line's raster.
func RasterPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.png", index))
}

// WriteLine synthesizes strokes for one line into dir. Blank lines are not
// sent to the model.
func (a *Adapter) WriteLine(ctx context.Context, dir string, line Line, params domain.RunParameters) error {
	if line.Blank {
		return nil
	}

	drawing, err := a.writer.Write(ctx, Request{
		Text:        line.Text,
		Bias:        params.LegibilityBias,
		StyleIndex:  params.StyleIndex,
		StrokeColor: params.StrokeColor,
		StrokeWidth: params.StrokeWidth,
		OutPath:     DrawingPath(dir, line.Index),
	})
	if err != nil {
		return err
	}

	data, err := json.Marshal(drawing)
	if err != nil {
		return fmt.Errorf("encode drawing: %w", err)
	}
	return a.writeFile(DrawingPath(dir, line.Index), data, 0o644)
}

// RasterizeLine converts one line's stored drawing into a PNG raster in dir
// and returns the raster path. Blank lines produce the fixed-size
// transparent placeholder.
func (a *Adapter) RasterizeLine(dir string, line Line, params domain.RunParameters) (string, error) {
	outPath := RasterPath(dir, line.Index)

	var img *image.RGBA
	if line.Blank {
		img = BlankRaster()
	} else {
		data, err := a.readFile(DrawingPath(dir, line.Index))
		if err != nil {
			return "", fmt.Errorf("read drawing: %w", err)
		}
		var drawing Drawing
		if err := json.Unmarshal(data, &drawing); err != nil {
			return "", fmt.Errorf("decode drawing: %w", err)
		}

		img, err = RasterizeDrawing(drawing, domain.ParseHexColor(params.StrokeColor), params.StrokeWidth)
		if err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode raster: %w", err)
	}
	if err := a.writeFile(outPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write raster: %w", err)
	}
	return outPath, nil
}
