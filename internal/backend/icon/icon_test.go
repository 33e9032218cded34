package icon

import (
	"bytes"
	"image/png"
	"testing"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 64 64">
  <rect x="0" y="0" width="64" height="64" fill="#800000"/>
  <circle cx="32" cy="32" r="16" fill="#cc9900"/>
</svg>`

func TestRenderPNG_Sizes(t *testing.T) {
	for _, size := range []int{MinSize, 32, DefaultSize, MaxSize} {
		data, err := RenderPNG([]byte(testSVG), size)
		if err != nil {
			t.Fatalf("RenderPNG(%d) failed: %v", size, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != size || bounds.Dy() != size {
			t.Errorf("expected %dx%d, got %dx%d", size, size, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestRenderPNG_DrawsIcon(t *testing.T) {
	data, err := RenderPNG([]byte(testSVG), 64)
	if err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}

	// centre of the gold circle
	r, g, b, a := img.At(32, 32).RGBA()
	if a == 0 {
		t.Fatal("expected an opaque pixel at the centre")
	}
	if r>>8 < 0xb0 || g>>8 < 0x80 || b>>8 > 0x20 {
		t.Errorf("unexpected centre colour %x %x %x", r>>8, g>>8, b>>8)
	}
}

func TestRenderPNG_Invalid(t *testing.T) {
	if _, err := RenderPNG([]byte(testSVG), MinSize-1); err == nil {
		t.Error("expected error for a size below the minimum")
	}
	if _, err := RenderPNG([]byte(testSVG), MaxSize+1); err == nil {
		t.Error("expected error for a size above the maximum")
	}
	if _, err := RenderPNG([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect`), DefaultSize); err == nil {
		t.Error("expected error for truncated SVG data")
	}
}
