// Package preprocess prepares rendered page images for OCR.
package preprocess

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	MinUpscale = 1.3
	MaxUpscale = 1.5
)

// gaussian3x3 is the 3x3 binomial smoothing kernel (sigma ~0.8).
var gaussian3x3 = [9]float64{
	1, 2, 1,
	2, 4, 2,
	1, 2, 1,
}

// Options tune the preprocessing chain.
type Options struct {
	// Upscale is the uniform resize factor, clamped to [MinUpscale, MaxUpscale].
	Upscale float64
	// CropFraction keeps only the bottom fraction of the page. Zero or values
	// >= 1 leave the page uncropped.
	CropFraction float64
}

// ClampUpscale pins f into the supported upscale range.
func ClampUpscale(f float64) float64 {
	switch {
	case f < MinUpscale:
		return MinUpscale
	case f > MaxUpscale:
		return MaxUpscale
	}
	return f
}

// CropBottom keeps the lower fraction of img.
func CropBottom(img image.Image, fraction float64) image.Image {
	if fraction <= 0 || fraction >= 1 {
		return img
	}
	b := img.Bounds()
	top := b.Min.Y + int(float64(b.Dy())*(1-fraction))
	return imaging.Crop(img, image.Rect(b.Min.X, top, b.Max.X, b.Max.Y))
}

// Binarize runs grayscale, upscale, 3x3 gaussian smoothing and Otsu
// thresholding, in that order.
func Binarize(img image.Image, opt Options) *image.Gray {
	src := CropBottom(img, opt.CropFraction)
	gray := imaging.Grayscale(src)

	f := ClampUpscale(opt.Upscale)
	b := gray.Bounds()
	w := int(float64(b.Dx())*f + 0.5)
	h := int(float64(b.Dy())*f + 0.5)
	scaled := imaging.Resize(gray, w, h, imaging.Linear)

	smooth := imaging.Convolve3x3(scaled, gaussian3x3, &imaging.ConvolveOptions{Normalize: true})
	return Threshold(smooth)
}

// Threshold binarizes img at the Otsu level of its luminance histogram.
// Pixels above the level become white, the rest black.
func Threshold(img image.Image) *image.Gray {
	gray := toGray(img)
	t := OtsuLevel(histogram(gray))

	out := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out
}

// OtsuLevel returns the threshold that maximizes between-class variance.
func OtsuLevel(hist [256]int) uint8 {
	total := 0
	sum := 0.0
	for i, n := range hist {
		total += n
		sum += float64(i * n)
	}
	if total == 0 {
		return 0
	}

	var (
		sumB    float64
		weightB int
		best    float64
		level   int
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

// EncodePNG serializes a processed page for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func histogram(g *image.Gray) [256]int {
	var h [256]int
	for _, v := range g.Pix {
		h[v]++
	}
	return h
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Stride == g.Rect.Dx() && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g.SetGray(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return g
}
