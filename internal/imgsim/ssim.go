// Package imgsim scores the structural similarity of two images. The
// renderer's end-to-end tests use it to compare frames without insisting on
// bit equality.
package imgsim

import (
	"errors"
	"image"
	"math"
)

// SSIM parameters from Wang et al., "Image Quality Assessment: From Error
// Visibility to Structural Similarity".
const (
	kernelSize = 11
	stddev     = 1.5

	k1 = 0.01
	k2 = 0.03

	c1 = k1 * k1
	c2 = k2 * k2
)

// SSIM computes the mean structural similarity index between two images of
// the same size, averaged over the RGB channels. 1 means identical; values
// drop toward 0 as structure diverges.
func SSIM(img1, img2 image.Image) (float64, error) {
	if img1.Bounds() != img2.Bounds() {
		return 0, errors.New("images are not the same size")
	}
	if img1.Bounds().Dx() < kernelSize || img1.Bounds().Dy() < kernelSize {
		return 0, errors.New("images are too small")
	}

	a := toChannels(img1)
	b := toChannels(img2)
	kernel := gaussianKernel()

	sum := 0.0
	n := 0
	width, height := img1.Bounds().Dx(), img1.Bounds().Dy()

	for x := 0; x <= width-kernelSize; x++ {
		for y := 0; y <= height-kernelSize; y++ {
			sum += windowSSIM(a, b, x, y, kernel)
			n++
		}
	}

	return sum / float64(n), nil
}

// windowSSIM evaluates one kernel window anchored at (xstart, ystart).
func windowSSIM(a, b [][]channels, xstart, ystart int, kernel []float64) float64 {
	var avg1, avg2 channels

	for kx := 0; kx < kernelSize; kx++ {
		for ky := 0; ky < kernelSize; ky++ {
			w := kernel[kx*kernelSize+ky]
			p1 := a[xstart+kx][ystart+ky]
			p2 := b[xstart+kx][ystart+ky]

			avg1.r += p1.r * w
			avg1.g += p1.g * w
			avg1.b += p1.b * w

			avg2.r += p2.r * w
			avg2.g += p2.g * w
			avg2.b += p2.b * w
		}
	}

	var var1, var2, covar channels

	for kx := 0; kx < kernelSize; kx++ {
		for ky := 0; ky < kernelSize; ky++ {
			w := kernel[kx*kernelSize+ky]
			p1 := a[xstart+kx][ystart+ky]
			p2 := b[xstart+kx][ystart+ky]

			var1.r += w * square(p1.r-avg1.r)
			var1.g += w * square(p1.g-avg1.g)
			var1.b += w * square(p1.b-avg1.b)

			var2.r += w * square(p2.r-avg2.r)
			var2.g += w * square(p2.g-avg2.g)
			var2.b += w * square(p2.b-avg2.b)

			covar.r += w * (p1.r - avg1.r) * (p2.r - avg2.r)
			covar.g += w * (p1.g - avg1.g) * (p2.g - avg2.g)
			covar.b += w * (p1.b - avg1.b) * (p2.b - avg2.b)
		}
	}

	score := func(avg1, avg2, var1, var2, covar float64) float64 {
		return ((2*avg1*avg2 + c1) * (2*covar + c2)) /
			((avg1*avg1 + avg2*avg2 + c1) * (var1 + var2 + c2))
	}

	red := score(avg1.r, avg2.r, var1.r, var2.r, covar.r)
	green := score(avg1.g, avg2.g, var1.g, var2.g, covar.g)
	blue := score(avg1.b, avg2.b, var1.b, var2.b, covar.b)

	return (red + green + blue) / 3
}

// gaussianKernel builds the normalized 11×11 Gaussian window.
func gaussianKernel() []float64 {
	kernel := make([]float64, kernelSize*kernelSize)
	total := 0.0
	for i := 0; i < kernelSize; i++ {
		for j := 0; j < kernelSize; j++ {
			dx := float64(i - kernelSize/2)
			dy := float64(j - kernelSize/2)
			w := math.Exp(-(dx*dx + dy*dy) / (2 * stddev * stddev))
			kernel[i*kernelSize+j] = w
			total += w
		}
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

func square(x float64) float64 { return x * x }

// channels holds one pixel's RGB values normalized to [0, 1].
type channels struct {
	r, g, b float64
}

func toChannels(img image.Image) [][]channels {
	bounds := img.Bounds()
	out := make([][]channels, bounds.Dx())
	for x := range out {
		out[x] = make([]channels, bounds.Dy())
		for y := range out[x] {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out[x][y] = channels{
				r: float64(r) / 0xffff,
				g: float64(g) / 0xffff,
				b: float64(b) / 0xffff,
			}
		}
	}
	return out
}
