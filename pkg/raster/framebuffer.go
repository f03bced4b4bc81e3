package raster

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Framebuffer is a 2D array of packed pixels, the raster target the
// pipeline writes into. It owns no relationship to the viewport size
// configured on a Context: a Framebuffer smaller than LX x LY is a tile,
// positioned within the viewport by Context.SetOffset.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // row-major
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color. Bounds checking is
// performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if fb == nil || x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black if out of
// bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if fb == nil || x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.ToImage())
}

// NewDepthBuffer allocates a depth buffer sized for an LX x LY viewport,
// cleared to math.MaxFloat64 (far).
func NewDepthBuffer(lx, ly int) []float64 {
	buf := make([]float64, lx*ly)
	ClearDepthBuffer(buf)
	return buf
}

// ClearDepthBuffer resets every entry of buf to math.MaxFloat64, so that the first
// write at any pixel always passes the "nearer wins" depth test. Uses
// copy-doubling rather than a per-element loop.
func ClearDepthBuffer(buf []float64) {
	n := len(buf)
	if n == 0 {
		return
	}
	buf[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(buf[i:], buf[:i])
	}
}
