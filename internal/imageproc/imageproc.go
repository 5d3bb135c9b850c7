package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"
)

// ErrInvalidImage is returned when the uploaded bytes cannot be decoded
// into a usable picture.
var ErrInvalidImage = errors.New("invalid image file")

// Image is a decoded picture as an interleaved 8-bit RGB buffer. It lives
// only for the duration of one analysis call.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // len = Width*Height*3
}

// ByteSize reports the size of the decoded pixel buffer in bytes.
func (m *Image) ByteSize() int {
	return len(m.Pix)
}

// Decode parses uploaded bytes into an RGB buffer. Undecodable or
// degenerate (zero-size) input yields ErrInvalidImage so downstream
// metrics never divide by zero.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidImage
	}

	pix := make([]uint8, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			pix = append(pix, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return &Image{Width: w, Height: h, Pix: pix}, nil
}

// Grayscale converts the buffer to BT.601 luminance values.
func (m *Image) Grayscale() []float64 {
	gray := make([]float64, m.Width*m.Height)
	for i := range gray {
		r := float64(m.Pix[i*3])
		g := float64(m.Pix[i*3+1])
		b := float64(m.Pix[i*3+2])
		gray[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return gray
}

// LaplacianVariance measures focus as the variance of the 4-neighbour
// Laplacian response over interior pixels. Sharp images produce strong
// edge responses and therefore high variance.
func LaplacianVariance(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	responses := make([]float64, 0, (w-2)*(h-2))
	sum := 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			r := gray[i-w] + gray[i+w] + gray[i-1] + gray[i+1] - 4*gray[i]
			responses = append(responses, r)
			sum += r
		}
	}
	mean := sum / float64(len(responses))
	variance := 0.0
	for _, r := range responses {
		d := r - mean
		variance += d * d
	}
	return variance / float64(len(responses))
}

// EdgeDensity runs a Sobel gradient pass with double-threshold
// hysteresis and reports edge pixels as a fraction of all pixels.
// Gradient magnitudes at or above high are edges outright; magnitudes
// between low and high count only when touching a strong edge.
func EdgeDensity(gray []float64, w, h int, low, high float64) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	mag := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			gx := -gray[i-w-1] - 2*gray[i-1] - gray[i+w-1] +
				gray[i-w+1] + 2*gray[i+1] + gray[i+w+1]
			gy := -gray[i-w-1] - 2*gray[i-w] - gray[i-w+1] +
				gray[i+w-1] + 2*gray[i+w] + gray[i+w+1]
			mag[i] = math.Sqrt(gx*gx + gy*gy)
		}
	}

	strong := make([]bool, w*h)
	for i, m := range mag {
		strong[i] = m >= high
	}

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if strong[i] {
				edges++
				continue
			}
			if mag[i] < low {
				continue
			}
			// Weak edge: keep when 8-connected to a strong one.
			if strong[i-w-1] || strong[i-w] || strong[i-w+1] ||
				strong[i-1] || strong[i+1] ||
				strong[i+w-1] || strong[i+w] || strong[i+w+1] {
				edges++
			}
		}
	}
	return float64(edges) / float64(w*h)
}

// ColorStdDev computes the per-channel standard deviation of pixel
// values across the whole image, averaged over the three channels.
func ColorStdDev(m *Image) float64 {
	n := float64(m.Width * m.Height)
	if n == 0 {
		return 0
	}
	var sums, sqSums [3]float64
	for i := 0; i < len(m.Pix); i += 3 {
		for c := 0; c < 3; c++ {
			v := float64(m.Pix[i+c])
			sums[c] += v
			sqSums[c] += v * v
		}
	}
	total := 0.0
	for c := 0; c < 3; c++ {
		mean := sums[c] / n
		variance := sqSums[c]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		total += math.Sqrt(variance)
	}
	return total / 3
}

// EncodeJPEG re-encodes the decoded buffer for training-mode saves.
func EncodeJPEG(m *Image) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i := 0; i < m.Width*m.Height; i++ {
		img.Pix[i*4] = m.Pix[i*3]
		img.Pix[i*4+1] = m.Pix[i*3+1]
		img.Pix[i*4+2] = m.Pix[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
