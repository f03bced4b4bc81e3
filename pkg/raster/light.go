package raster

import (
	"math"

	"github.com/soft3d/raster/pkg/vecmath"
)

// buildSpecularTable precomputes 16 samples of x^exponent over the domain
// [1 - min(exponent,8)/exponent, 1]. Below the domain the real pow would
// be negligible for any exponent worth calling "specular", so powSpecular
// returns 0 there instead of evaluating math.Pow.
func buildSpecularTable(exponent int) [16]float64 {
	var table [16]float64
	if exponent <= 0 {
		for i := range table {
			table[i] = 1
		}
		return table
	}
	clamped := exponent
	if clamped > 8 {
		clamped = 8
	}
	lo := 1 - float64(clamped)/float64(exponent)
	for i := range table {
		x := lo + (1-lo)*float64(i)/float64(len(table)-1)
		table[i] = math.Pow(x, float64(exponent))
	}
	return table
}

// powSpecular approximates x^exponent via linear interpolation over the
// precomputed table. x <= 0 or below the table's domain yields 0; x >= 1
// yields the table's last entry.
func powSpecular(table [16]float64, exponent int, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return table[len(table)-1]
	}
	if exponent <= 0 {
		return 1
	}
	clamped := exponent
	if clamped > 8 {
		clamped = 8
	}
	lo := 1 - float64(clamped)/float64(exponent)
	if x < lo {
		return 0
	}
	t := (x - lo) / (1 - lo) * float64(len(table)-1)
	i := int(t)
	if i >= len(table)-1 {
		return table[len(table)-1]
	}
	frac := t - float64(i)
	return table[i] + (table[i+1]-table[i])*frac
}

// phongInput carries exactly what the Phong evaluator needs for one
// vertex or face: the two already-scaled dot products described in
// spec §4.5 (N.L and N.H, prescaled by the norm-inverse factor baked into
// the Context's cached light/half vectors).
type phongInput struct {
	diffuseDot  float64 // N . lightView
	specularDot float64
}

// shade evaluates the Phong lighting equation for one vertex or face.
// withTexture suppresses the material base-color multiply, since in that
// case the rasterizer multiplies by the sampled texel instead.
func (c *Context) shade(in phongInput, withTexture bool) RGB {
	table := c.powTableFor()

	diffuse := math.Max(in.diffuseDot, 0)
	specular := powSpecular(table, c.specularExponent, math.Max(in.specularDot, 0))

	col := c.derived.premulAmbient.
		Add(c.derived.premulDiffuse.Scale(diffuse)).
		Add(c.derived.premulSpecular.Scale(specular)).
		Clamp()

	if !withTexture {
		col = col.Mul(c.derived.objectColor)
	}
	return col
}

// phongDots computes diffuseDot/specularDot for a transformed (but not
// necessarily unit-length) normal, applying the sign correction described
// in spec §4.2 when culling is disabled and this triangle is back-facing:
// per-vertex normals are always supplied for the CCW side, so when the
// visible face is the CW one the dot products are negated to keep
// lighting plausible on both sides.
func (c *Context) phongDots(normal vecmath.Vec3, flipSign bool) phongInput {
	d := normal.Dot(c.derived.lightView)
	s := normal.Dot(c.derived.halfVector)
	if flipSign {
		d, s = -d, -s
	}
	return phongInput{diffuseDot: d, specularDot: s}
}
