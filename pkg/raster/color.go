// Package raster implements the transform/cull/clip/shade/rasterize
// pipeline: turning triangles, quads, and packed mesh chains into shaded
// pixels on an externally owned raster target, with an optional depth
// buffer to resolve overlaps between primitives.
package raster

import "image/color"

// RGB is a floating point color, channels nominally in [0,1], used for all
// internal shading math (lighting accumulates and can briefly exceed 1
// before the final clamp). The raster target itself stores packed 8-bit
// pixels; RGB is only converted to that representation when a pixel is
// actually written.
type RGB struct {
	R, G, B float64
}

// White returns the fully-lit color (1,1,1).
func White() RGB { return RGB{1, 1, 1} }

// Black returns the zero color.
func Black() RGB { return RGB{} }

// Add returns the component-wise sum a + b.
func (a RGB) Add(b RGB) RGB {
	return RGB{a.R + b.R, a.G + b.G, a.B + b.B}
}

// Scale returns a scaled by s.
func (a RGB) Scale(s float64) RGB {
	return RGB{a.R * s, a.G * s, a.B * s}
}

// Mul returns the component-wise product a * b, used to modulate a light
// color by a material color or a sampled texel.
func (a RGB) Mul(b RGB) RGB {
	return RGB{a.R * b.R, a.G * b.G, a.B * b.B}
}

// Lerp returns the linear interpolation between a and b by t.
func (a RGB) Lerp(b RGB, t float64) RGB {
	return RGB{
		a.R + (b.R-a.R)*t,
		a.G + (b.G-a.G)*t,
		a.B + (b.B-a.B)*t,
	}
}

// Clamp clamps each channel to [0,1].
func (a RGB) Clamp() RGB {
	return RGB{clamp01(a.R), clamp01(a.G), clamp01(a.B)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToRGBA packs the color into an opaque 8-bit-per-channel pixel, clamping
// first. This is the only point where the floating-point shading pipeline
// touches the raster target's actual pixel representation.
func (a RGB) ToRGBA() color.RGBA {
	c := a.Clamp()
	return color.RGBA{
		R: uint8(c.R * 255),
		G: uint8(c.G * 255),
		B: uint8(c.B * 255),
		A: 255,
	}
}

// RGBFromRGBA converts a packed 8-bit pixel back to floating point, used
// when a sampled texel needs to participate in further float math (e.g.
// being multiplied by a Gouraud light color).
func RGBFromRGBA(c color.RGBA) RGB {
	return RGB{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}
