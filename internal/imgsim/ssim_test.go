package imgsim

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func gradientImage(w, h int, phase uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x*8) + phase
			img.SetRGBA(x, y, color.RGBA{v, v / 2, 255 - v, 255})
		}
	}
	return img
}

func noiseImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(12345)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed = seed*1664525 + 1013904223
			img.SetRGBA(x, y, color.RGBA{uint8(seed >> 24), uint8(seed >> 16), uint8(seed >> 8), 255})
		}
	}
	return img
}

func TestSSIMIdenticalImages(t *testing.T) {
	img := gradientImage(32, 32, 0)
	got, err := SSIM(img, img)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("SSIM of an image with itself = %v, want 1", got)
	}
}

func TestSSIMOrdersSimilarity(t *testing.T) {
	base := gradientImage(32, 32, 0)
	near := gradientImage(32, 32, 4)
	far := noiseImage(32, 32)

	nearScore, err := SSIM(base, near)
	if err != nil {
		t.Fatal(err)
	}
	farScore, err := SSIM(base, far)
	if err != nil {
		t.Fatal(err)
	}

	if nearScore <= farScore {
		t.Errorf("shifted gradient (%v) should score above noise (%v)", nearScore, farScore)
	}
	if nearScore <= 0.5 {
		t.Errorf("slightly shifted gradient scored %v, want well above 0.5", nearScore)
	}
}

func TestSSIMErrors(t *testing.T) {
	if _, err := SSIM(gradientImage(32, 32, 0), gradientImage(16, 16, 0)); err == nil {
		t.Error("expected an error for mismatched sizes")
	}
	if _, err := SSIM(gradientImage(8, 8, 0), gradientImage(8, 8, 0)); err == nil {
		t.Error("expected an error for images smaller than the kernel")
	}
}
