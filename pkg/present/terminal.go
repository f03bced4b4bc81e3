// Package present drives a pkg/raster.Framebuffer onto a terminal, projects
// wireframe overlays through a raster.Context, and smooths orbit-camera
// input with critically-damped springs.
package present

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/soft3d/raster/pkg/raster"
)

// TerminalRenderer packs a raster.Framebuffer into terminal half-block
// cells and redraws it. Each terminal row represents two framebuffer rows
// (▀ with fg=top pixel, bg=bottom pixel), so FramebufferSize reports a
// framebuffer twice as tall as the terminal.
type TerminalRenderer struct {
	term          *uv.Terminal
	width, height int
	pending       frameDrawable
}

// NewTerminalRenderer creates a renderer targeting the given terminal
// dimensions in cells.
func NewTerminalRenderer(term *uv.Terminal, width, height int) *TerminalRenderer {
	return &TerminalRenderer{term: term, width: width, height: height}
}

// FramebufferSize returns the pixel dimensions a Framebuffer must have to
// fill this renderer's terminal area.
func (tr *TerminalRenderer) FramebufferSize() (int, int) {
	return tr.width, tr.height * 2
}

// Render queues fb for display; Flush actually draws it to the terminal.
func (tr *TerminalRenderer) Render(fb *raster.Framebuffer) {
	tr.pending = frameDrawable{fb: fb}
}

// Flush redraws the most recently queued framebuffer.
func (tr *TerminalRenderer) Flush() error {
	tr.term.Draw(tr.pending)
	return nil
}

// frameDrawable adapts a raster.Framebuffer to ultraviolet's Drawable
// interface without adding a Draw method to raster.Framebuffer itself
// (pkg/raster has no terminal dependency of its own).
type frameDrawable struct {
	fb *raster.Framebuffer
}

func (d frameDrawable) Draw(scr uv.Screen, area uv.Rectangle) {
	if d.fb == nil {
		return
	}
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < d.fb.Width; col++ {
			topColor := d.fb.GetPixel(col, topY)
			botColor := d.fb.GetPixel(col, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface, treating
// zero alpha as "no color" so the terminal's own background shows through.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
