package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"testing"

	"handsynth/internal/compose"
	"handsynth/internal/domain"
)

// memWrites captures written files in memory.
type memWrites struct {
	files map[string][]byte
}

func newMemWrites() *memWrites {
	return &memWrites{files: map[string][]byte{}}
}

// write records one file write.
func (m *memWrites) write(name string, data []byte, _ os.FileMode) error {
	m.files[name] = append([]byte(nil), data...)
	return nil
}

// testPage builds a page with one opaque pixel region on transparency.
func testPage() *compose.Page {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	draw.Draw(img, image.Rect(10, 10, 20, 20),
		image.NewUniform(color.RGBA{R: 200, A: 255}), image.Point{}, draw.Src)
	return &compose.Page{Image: img}
}

func exportParams(format domain.ExportFormat, bg domain.BackgroundType) domain.RunParameters {
	return domain.RunParameters{
		ExportFormat: format,
		JPGQuality:   90,
		Background:   domain.BackgroundSpec{Type: bg, Color: "#00FF00"},
	}
}

// TestEncodePNGTransparentPreservesAlpha checks the lossless path.
func TestEncodePNGTransparentPreservesAlpha(t *testing.T) {
	writes := newMemWrites()
	enc := NewEncoderForTests(nil, nil, writes.write)

	paths, warnings, err := enc.Encode(testPage(), exportParams(domain.FormatPNG, domain.BackgroundTransparent), "out/run")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(paths) != 1 || paths[0] != "out/run.png" {
		t.Fatalf("paths = %v", paths)
	}

	decoded, err := png.Decode(bytes.NewReader(writes.files["out/run.png"]))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, _, _, a := decoded.At(0, 0).RGBA(); a != 0 {
		t.Fatal("corner pixel should stay transparent")
	}
	if _, _, _, a := decoded.At(15, 15).RGBA(); a == 0 {
		t.Fatal("content pixel should be opaque")
	}
}

// TestEncodePNGIdempotent checks byte-identical repeated encodes.
func TestEncodePNGIdempotent(t *testing.T) {
	writes := newMemWrites()
	enc := NewEncoderForTests(nil, nil, writes.write)
	params := exportParams(domain.FormatPNG, domain.BackgroundWhite)

	if _, _, err := enc.Encode(testPage(), params, "a"); err != nil {
		t.Fatalf("first encode: %v", err)
	}
	if _, _, err := enc.Encode(testPage(), params, "b"); err != nil {
		t.Fatalf("second encode: %v", err)
	}
	if !bytes.Equal(writes.files["a.png"], writes.files["b.png"]) {
		t.Fatal("same page must encode to identical bytes")
	}
}

// TestEncodeWhiteBackgroundFlattens checks alpha removal on flatten.
func TestEncodeWhiteBackgroundFlattens(t *testing.T) {
	writes := newMemWrites()
	enc := NewEncoderForTests(nil, nil, writes.write)

	_, _, err := enc.Encode(testPage(), exportParams(domain.FormatPNG, domain.BackgroundWhite), "run")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(writes.files["run.png"]))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, a := decoded.At(0, 0).RGBA()
	if a == 0 || r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatalf("corner = %v %v %v %v, want opaque white", r, g, b, a)
	}
}

// TestEncodeJPGAlwaysWritten checks the lossy path produces a file.
func TestEncodeJPGAlwaysWritten(t *testing.T) {
	writes := newMemWrites()
	enc := NewEncoderForTests(nil, nil, writes.write)

	paths, warnings, err := enc.Encode(testPage(), exportParams(domain.FormatJPG, domain.BackgroundTransparent), "run")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(paths) != 1 || paths[0] != "run.jpg" {
		t.Fatalf("paths = %v", paths)
	}
	if len(writes.files["run.jpg"]) == 0 {
		t.Fatal("no jpg bytes written")
	}
}

// TestEncodeJPGQualityOutOfRangeWarns checks the quality fallback is
// reported instead of applied silently.
func TestEncodeJPGQualityOutOfRangeWarns(t *testing.T) {
	for _, quality := range []int{0, 49, 101} {
		writes := newMemWrites()
		enc := NewEncoderForTests(nil, nil, writes.write)

		params := exportParams(domain.FormatJPG, domain.BackgroundTransparent)
		params.JPGQuality = quality

		paths, warnings, err := enc.Encode(testPage(), params, "run")
		if err != nil {
			t.Fatalf("quality %d: Encode: %v", quality, err)
		}
		if len(warnings) != 1 || !strings.Contains(warnings[0], "using 95") {
			t.Fatalf("quality %d: warnings = %v", quality, warnings)
		}
		if len(paths) != 1 || len(writes.files["run.jpg"]) == 0 {
			t.Fatalf("quality %d: jpg must still be written, paths = %v", quality, paths)
		}
	}
}

// TestEncodeBackgroundImageFallsBackToWhite checks graceful degradation.
func TestEncodeBackgroundImageFallsBackToWhite(t *testing.T) {
	writes := newMemWrites()
	enc := NewEncoderForTests(nil, func(path string) (image.Image, error) {
		return nil, fmt.Errorf("unreadable: %s", path)
	}, writes.write)

	params := exportParams(domain.FormatPNG, domain.BackgroundImage)
	params.Background.ImagePath = "bg.png"

	paths, warnings, err := enc.Encode(testPage(), params, "run")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one background warning", warnings)
	}
	if len(paths) != 1 {
		t.Fatalf("paths = %v, output must still be written", paths)
	}

	decoded, err := png.Decode(bytes.NewReader(writes.files["run.png"]))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, _, _, a := decoded.At(0, 0).RGBA(); a == 0 {
		t.Fatal("fallback fill must be opaque")
	}
}

// TestEncodePDFUnavailable checks the capability gate.
func TestEncodePDFUnavailable(t *testing.T) {
	writes := newMemWrites()
	enc := NewEncoderForTests(nil, nil, writes.write)

	for _, f := range enc.Formats() {
		if f == domain.FormatPDF {
			t.Fatal("pdf must not be offered without a writer")
		}
	}

	paths, warnings, err := enc.Encode(testPage(), exportParams(domain.FormatPDF, domain.BackgroundWhite), "run")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(paths) != 0 || len(warnings) != 1 {
		t.Fatalf("paths = %v warnings = %v", paths, warnings)
	}
}

// TestEncodePDFDelegatesToWriter checks the pdf capability wiring.
func TestEncodePDFDelegatesToWriter(t *testing.T) {
	writes := newMemWrites()
	pdf := &fakePDFWriter{}
	enc := NewEncoderForTests(pdf, nil, writes.write)

	paths, warnings, err := enc.Encode(testPage(), exportParams(domain.FormatPDF, domain.BackgroundWhite), "run")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(paths) != 1 || paths[0] != "run.pdf" || pdf.calls != 1 {
		t.Fatalf("paths = %v calls = %d", paths, pdf.calls)
	}
}

// fakePDFWriter counts WritePDF invocations.
type fakePDFWriter struct {
	calls int
	err   error
}

// WritePDF records one call.
func (f *fakePDFWriter) WritePDF(img image.Image, path string) error {
	f.calls++
	return f.err
}
