package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checkerImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not an image")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestDecodeProducesRGBBuffer(t *testing.T) {
	data := encodePNG(t, uniformImage(8, 6, color.RGBA{10, 20, 30, 255}))

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Width != 8 || img.Height != 6 {
		t.Fatalf("unexpected dimensions: %dx%d", img.Width, img.Height)
	}
	if img.ByteSize() != 8*6*3 {
		t.Fatalf("unexpected byte size: %d", img.ByteSize())
	}
	if img.Pix[0] != 10 || img.Pix[1] != 20 || img.Pix[2] != 30 {
		t.Fatalf("unexpected first pixel: %v", img.Pix[:3])
	}
}

func TestLaplacianVarianceFlatImageIsZero(t *testing.T) {
	img, err := Decode(encodePNG(t, uniformImage(16, 16, color.RGBA{128, 128, 128, 255})))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	gray := img.Grayscale()
	if v := LaplacianVariance(gray, img.Width, img.Height); v != 0 {
		t.Fatalf("expected zero variance for flat image, got %f", v)
	}
}

func TestLaplacianVarianceDetectsDetail(t *testing.T) {
	img, err := Decode(encodePNG(t, checkerImage(16, 16)))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	gray := img.Grayscale()
	if v := LaplacianVariance(gray, img.Width, img.Height); v <= 0 {
		t.Fatalf("expected positive variance for checker pattern, got %f", v)
	}
}

func stripeImage(w, h, barWidth int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/barWidth)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestEdgeDensityBounds(t *testing.T) {
	flat, err := Decode(encodePNG(t, uniformImage(16, 16, color.RGBA{60, 60, 60, 255})))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if d := EdgeDensity(flat.Grayscale(), flat.Width, flat.Height, 100, 200); d != 0 {
		t.Fatalf("expected zero edge density for flat image, got %f", d)
	}

	busy, err := Decode(encodePNG(t, stripeImage(16, 16, 4)))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	d := EdgeDensity(busy.Grayscale(), busy.Width, busy.Height, 100, 200)
	if d <= 0 || d > 1 {
		t.Fatalf("edge density out of range: %f", d)
	}
}

func TestColorStdDev(t *testing.T) {
	flat, err := Decode(encodePNG(t, uniformImage(10, 10, color.RGBA{200, 100, 50, 255})))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s := ColorStdDev(flat); s != 0 {
		t.Fatalf("expected zero deviation for flat image, got %f", s)
	}

	// Half black, half white: every channel deviates by 127.5.
	split := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				split.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				split.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	img, err := Decode(encodePNG(t, split))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s := ColorStdDev(img); math.Abs(s-127.5) > 0.01 {
		t.Fatalf("expected deviation 127.5, got %f", s)
	}
}

func TestEncodeJPEGRoundTrips(t *testing.T) {
	img, err := Decode(encodePNG(t, uniformImage(12, 9, color.RGBA{90, 90, 90, 255})))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	data, err := EncodeJPEG(img)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if decoded.Width != 12 || decoded.Height != 9 {
		t.Fatalf("unexpected dimensions after round trip: %dx%d", decoded.Width, decoded.Height)
	}
}
