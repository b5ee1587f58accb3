package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/tlawson/lumen/pkg/math3d"
)

// FrameBuffer is a 2D array of linear radiance samples, one Vec3 per pixel,
// stored as height rows of width columns. It is overwritten in place by each
// render and owned by the caller across renders.
type FrameBuffer struct {
	Width  int
	Height int
	Pixels [][]math3d.Vec3
}

// NewFrameBuffer allocates a zeroed framebuffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	pixels := make([][]math3d.Vec3, height)
	for j := range pixels {
		pixels[j] = make([]math3d.Vec3, width)
	}
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// At returns the sample at column i, row j.
func (fb *FrameBuffer) At(i, j int) math3d.Vec3 {
	return fb.Pixels[j][i]
}

// Set stores the sample at column i, row j.
func (fb *FrameBuffer) Set(i, j int, v math3d.Vec3) {
	fb.Pixels[j][i] = v
}

// Normalize rescales every sample so the brightest channel in the buffer
// becomes 1. A buffer that is already normalized (or entirely black) is left
// unchanged. This is the only tone-mapping step.
func (fb *FrameBuffer) Normalize() {
	max := 0.0
	for j := range fb.Pixels {
		for i := range fb.Pixels[j] {
			if m := fb.Pixels[j][i].MaxComponent(); m > max {
				max = m
			}
		}
	}

	if max <= 0 {
		return
	}

	inv := 1 / max
	for j := range fb.Pixels {
		for i := range fb.Pixels[j] {
			fb.Pixels[j][i] = fb.Pixels[j][i].Scale(inv)
		}
	}
}

// Bytes packs the buffer into 3·W·H bytes, row-major, top to bottom. Pixel
// (i, j) sits at offset 3·(j·W + i) as R, G, B, each channel clamped to
// [0, 255].
func (fb *FrameBuffer) Bytes() []byte {
	out := make([]byte, 3*fb.Width*fb.Height)
	n := 0
	for j := range fb.Pixels {
		for i := range fb.Pixels[j] {
			v := fb.Pixels[j][i]
			out[n] = quantize(v.X)
			out[n+1] = quantize(v.Y)
			out[n+2] = quantize(v.Z)
			n += 3
		}
	}
	return out
}

func quantize(f float64) byte {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return byte(f * 255)
}

// WritePPM writes the buffer as a binary P6 PPM file.
func (fb *FrameBuffer) WritePPM(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ppm: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "P6\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}
	if _, err := f.Write(fb.Bytes()); err != nil {
		return fmt.Errorf("write ppm pixels: %w", err)
	}
	return nil
}

// ToImage converts the framebuffer to a standard Go image.
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for j := range fb.Pixels {
		for i := range fb.Pixels[j] {
			v := fb.Pixels[j][i]
			img.SetRGBA(i, j, color.RGBA{quantize(v.X), quantize(v.Y), quantize(v.Z), 255})
		}
	}
	return img
}
