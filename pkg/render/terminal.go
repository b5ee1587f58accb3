package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen, using double vertical resolution via half-block characters: the
// upper half block's foreground carries the top pixel and its background the
// bottom pixel. The framebuffer height should be 2x the terminal rows.
func (fb *FrameBuffer) Draw(scr uv.Screen, cols, rows int) {
	for row := 0; row < rows; row++ {
		topY := row * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := 0; col < cols && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: fb.cellColor(col, topY),
					Bg: fb.cellColor(col, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// cellColor quantizes the sample at (i, j), or black when j runs past the
// last row (odd framebuffer heights).
func (fb *FrameBuffer) cellColor(i, j int) color.Color {
	if j >= fb.Height {
		return color.RGBA{A: 255}
	}
	v := fb.Pixels[j][i]
	return color.RGBA{quantize(v.X), quantize(v.Y), quantize(v.Z), 255}
}
