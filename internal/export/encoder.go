package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"handsynth/internal/compose"
	"handsynth/internal/domain"
)

// PDFWriter writes a flattened raster as a single-page PDF document. Its
// availability is a deployment property, not a per-run condition.
type PDFWriter interface {
	WritePDF(img image.Image, path string) error
}

// Encoder serializes a composed page to an output format.
type Encoder struct {
	pdf       PDFWriter
	openImage func(path string) (image.Image, error)
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewEncoder builds an encoder. A nil pdf writer disables PDF export.
func NewEncoder(pdf PDFWriter) *Encoder {
	return &Encoder{
		pdf:       pdf,
		openImage: openImageFile,
		writeFile: os.WriteFile,
	}
}

// NewEncoderForTests builds an encoder with injected dependencies.
func NewEncoderForTests(
	pdf PDFWriter,
	openImage func(path string) (image.Image, error),
	writeFile func(name string, data []byte, perm os.FileMode) error,
) *Encoder {
	return &Encoder{pdf: pdf, openImage: openImage, writeFile: writeFile}
}

// Formats lists the export formats this deployment offers.
func (e *Encoder) Formats() []domain.ExportFormat {
	formats := []domain.ExportFormat{domain.FormatPNG, domain.FormatJPG}
	if e.pdf != nil {
		formats = append(formats, domain.FormatPDF)
	}
	return formats
}

// Encode composites the background beneath the page, encodes it to the
// requested format, and writes it next to basePath (extension appended).
// Returned warnings cover background fallbacks and write failures; paths
// lists the files that were actually written.
func (e *Encoder) Encode(page *compose.Page, params domain.RunParameters, basePath string) ([]string, []string, error) {
	if page == nil || page.Image == nil {
		return nil, nil, fmt.Errorf("no composed page to encode")
	}

	flattened, warnings := e.applyBackground(page.Image, params.Background)

	var paths []string
	switch params.ExportFormat {
	case domain.FormatPNG:
		path := basePath + ".png"
		if err := e.writePNG(flattened, path); err != nil {
			warnings = append(warnings, fmt.Sprintf("saving output file: %v", err))
		} else {
			paths = append(paths, path)
		}
	case domain.FormatJPG:
		quality := params.JPGQuality
		if quality < 50 || quality > 100 {
			warnings = append(warnings, fmt.Sprintf("jpg quality %d is out of range [50, 100], using 95", quality))
			quality = 95
		}
		path := basePath + ".jpg"
		if err := e.writeJPG(flattened, path, quality); err != nil {
			warnings = append(warnings, fmt.Sprintf("saving output file: %v", err))
		} else {
			paths = append(paths, path)
		}
	case domain.FormatPDF:
		if e.pdf == nil {
			warnings = append(warnings, "pdf export is not available in this deployment")
			break
		}
		path := basePath + ".pdf"
		if err := e.pdf.WritePDF(flattenToWhite(flattened), path); err != nil {
			warnings = append(warnings, fmt.Sprintf("saving output file: %v", err))
		} else {
			paths = append(paths, path)
		}
	default:
		return nil, warnings, fmt.Errorf("unknown export format %q", params.ExportFormat)
	}

	return paths, warnings, nil
}

// applyBackground flattens the page onto its configured backing. The
// transparent backing keeps alpha untouched.
func (e *Encoder) applyBackground(page *image.RGBA, spec domain.BackgroundSpec) (*image.RGBA, []string) {
	var warnings []string

	switch spec.Type {
	case domain.BackgroundTransparent, "":
		return page, nil
	case domain.BackgroundImage:
		img, err := e.openImage(spec.ImagePath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("background image: %v", err))
			return flattenOnto(page, color.White), warnings
		}
		bg := compose.Resize(img, page.Bounds().Dx(), page.Bounds().Dy())
		draw.Draw(bg, bg.Bounds(), page, page.Bounds().Min, draw.Over)
		return bg, nil
	case domain.BackgroundColor:
		return flattenOnto(page, domain.ParseHexColor(spec.Color)), nil
	default: // white
		return flattenOnto(page, color.White), nil
	}
}

// writePNG encodes losslessly, preserving whatever alpha the page carries.
func (e *Encoder) writePNG(img *image.RGBA, path string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return e.writeFile(path, buf.Bytes(), 0o644)
}

// writeJPG flattens remaining alpha onto white and encodes at the given
// quality. JPEG cannot carry transparency.
func (e *Encoder) writeJPG(img *image.RGBA, path string, quality int) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattenToWhite(img), &jpeg.Options{Quality: quality}); err != nil {
		return err
	}
	return e.writeFile(path, buf.Bytes(), 0o644)
}

// flattenOnto composites img over a solid fill of the same size.
func flattenOnto(img *image.RGBA, fill color.Color) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// flattenToWhite removes alpha for formats that cannot carry it.
func flattenToWhite(img *image.RGBA) *image.RGBA {
	return flattenOnto(img, color.White)
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
