package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestResizeSolidColor(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	out, err := ResizeImage(solid(40, 20, red), 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 5 {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if got := out.NRGBAAt(4, 2); got != red {
		t.Fatalf("expected red, got %v", got)
	}
}

func TestFitSquarePadsWideImages(t *testing.T) {
	blue := color.NRGBA{B: 255, A: 255}
	out, err := FitSquare(solid(200, 100, blue), 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 64 {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if got := out.NRGBAAt(32, 0); got.A != 0 {
		t.Fatalf("expected transparent padding, got %v", got)
	}
	if got := out.NRGBAAt(32, 32); got != blue {
		t.Fatalf("expected blue center, got %v", got)
	}
}

func TestThumbnailRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(420, 420, color.NRGBA{G: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	out, err := Thumbnail(buf.Bytes(), 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Fatalf("unexpected width %d", img.Bounds().Dx())
	}
}

func TestInvalidInputs(t *testing.T) {
	if _, err := ResizeImage(solid(1, 1, color.NRGBA{}), 0, 5); err != ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := Thumbnail([]byte("not an image"), 256); err == nil {
		t.Fatalf("expected decode error")
	}
}
