package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
)

// writeFixture renders a small A4 PDF in points with the Helvetica core font
// and returns its path.
func writeFixture(t *testing.T, build func(f *fpdf.Fpdf)) string {
	t.Helper()

	f := fpdf.New("P", "pt", "A4", "")
	f.SetFont("Helvetica", "", 12)
	f.AddPage()
	build(f)

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := f.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to generate fixture PDF: %v", err)
	}
	return path
}

func fixturePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture PNG: %v", err)
	}
	return buf.Bytes()
}

// truncateFixture cuts the file at path to half its length, leaving a valid
// header over a broken body.
func truncateFixture(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	out := filepath.Join(t.TempDir(), "truncated.pdf")
	if err := os.WriteFile(out, data[:len(data)/2], 0o644); err != nil {
		t.Fatalf("failed to write truncated fixture: %v", err)
	}
	return out
}
